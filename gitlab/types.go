package gitlab

import (
	"fmt"
	"time"
)

// AccessLevel is a GitLab member permission level. The client never inspects
// these values; they exist so callers can compare against
// Member.AccessLevel when interpreting member listings.
type AccessLevel int

const (
	AccessLevelDeveloper AccessLevel = 40
	AccessLevelOwner     AccessLevel = 50
)

// String returns the name GitLab uses for the level, or the numeric form for
// levels this package does not model.
func (a AccessLevel) String() string {
	switch a {
	case AccessLevelDeveloper:
		return "Developer"
	case AccessLevelOwner:
		return "Owner"
	default:
		return fmt.Sprintf("Level(%d)", int(a))
	}
}

// Project is the subset of GitLab's project representation this package
// decodes. The client hands response bodies back untouched; these types are
// for callers that unmarshal them.
type Project struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	PathWithNamespace string     `json:"path_with_namespace"`
	Description       string     `json:"description"`
	Visibility        string     `json:"visibility"`
	Archived          bool       `json:"archived"`
	WebURL            string     `json:"web_url"`
	LastActivityAt    *time.Time `json:"last_activity_at"`
}

// Member is a project member, direct or inherited from an ancestor group.
// ExpiresAt stays a string because GitLab sends a bare date, not a timestamp.
type Member struct {
	ID          int         `json:"id"`
	Username    string      `json:"username"`
	Name        string      `json:"name"`
	State       string      `json:"state"`
	AccessLevel AccessLevel `json:"access_level"`
	WebURL      string      `json:"web_url"`
	ExpiresAt   *string     `json:"expires_at"`
}

// IssueAuthor is the author block embedded in issue payloads.
type IssueAuthor struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Issue is the subset of GitLab's issue representation this package decodes.
// IID is the project-local number used in issue URLs and by CloseIssue; ID
// is the instance-global one.
type Issue struct {
	ID          int         `json:"id"`
	IID         int         `json:"iid"`
	ProjectID   int         `json:"project_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	State       string      `json:"state"`
	Labels      []string    `json:"labels"`
	Author      IssueAuthor `json:"author"`
	WebURL      string      `json:"web_url"`
	CreatedAt   *time.Time  `json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at"`
}
