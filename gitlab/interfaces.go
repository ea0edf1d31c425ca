package gitlab

import (
	"context"
	"net/http"
)

// HTTPClient executes HTTP requests on behalf of the client. *http.Client
// satisfies it; callers can substitute any transport via WithHTTPClient.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProjectManager defines the GitLab project operations exposed by this package
type ProjectManager interface {
	// ListProjects fetches the projects visible to the caller
	ListProjects(ctx context.Context, opt *ListProjectsOptions) (*Response, error)

	// ListMembers fetches all members of the configured project, inherited ones included
	ListMembers(ctx context.Context, opt *ListMembersOptions) (*Response, error)

	// OpenIssue creates a new issue on the configured project
	OpenIssue(ctx context.Context, opt *OpenIssueOptions) (*Response, error)

	// ListIssues fetches issues of the configured project
	ListIssues(ctx context.Context, opt *ListIssuesOptions) (*Response, error)

	// CloseIssue deletes an issue from the configured project by its iid
	CloseIssue(ctx context.Context, opt *CloseIssueOptions) (*Response, error)
}
