package gitlab

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

// Ptr returns a pointer to v. Option structs use pointer fields so that an
// unset field and an explicit zero value stay distinguishable; Ptr keeps
// filling them terse:
//
//	opt := &ListProjectsOptions{Archived: gitlab.Ptr(true), Owned: gitlab.Ptr(false)}
func Ptr[T any](v T) *T {
	return &v
}

// Labels is a label list that serializes to GitLab's comma-joined form: a
// single labels=a,b pair in query strings and a "labels": "a,b" string in
// JSON bodies.
type Labels []string

// MarshalJSON implements json.Marshaler.
func (l Labels) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// EncodeValues implements query.Encoder.
func (l Labels) EncodeValues(key string, v *url.Values) error {
	v.Set(key, l.String())
	return nil
}

// String returns the comma-joined form GitLab expects.
func (l Labels) String() string {
	return strings.Join(l, ",")
}

// ListProjectsOptions filters and orders the project listing. Every field is
// optional: nil fields are omitted from the query entirely, so an absent
// Archived and Archived pointing at false produce different requests.
type ListProjectsOptions struct {
	Archived   *bool   `url:"archived,omitempty" json:"archived,omitempty"`
	IDAfter    *int    `url:"id_after,omitempty" json:"id_after,omitempty"`
	Membership *bool   `url:"membership,omitempty" json:"membership,omitempty"`
	OrderBy    *string `url:"order_by,omitempty" json:"order_by,omitempty"`
	Owned      *bool   `url:"owned,omitempty" json:"owned,omitempty"`
	Search     *string `url:"search,omitempty" json:"search,omitempty"`
	Simple     *bool   `url:"simple,omitempty" json:"simple,omitempty"`
	Sort       *string `url:"sort,omitempty" json:"sort,omitempty"`
	Starred    *bool   `url:"starred,omitempty" json:"starred,omitempty"`
	Visibility *string `url:"visibility,omitempty" json:"visibility,omitempty"`
	Page       *int    `url:"page,omitempty" json:"page,omitempty"`
	PerPage    *int    `url:"per_page,omitempty" json:"per_page,omitempty"`
}

// ListMembersOptions filters the member listing. The listing includes
// members inherited from ancestor groups, not only direct ones.
type ListMembersOptions struct {
	Query   *string `url:"query,omitempty" json:"query,omitempty"`
	UserIDs []int   `url:"user_ids[],omitempty" json:"user_ids,omitempty"`
	State   *string `url:"state,omitempty" json:"state,omitempty"`
	Page    *int    `url:"page,omitempty" json:"page,omitempty"`
	PerPage *int    `url:"per_page,omitempty" json:"per_page,omitempty"`
}

// OpenIssueOptions is the JSON body for creating an issue. Nil fields are
// dropped from the payload, so GitLab sees exactly what the caller set.
type OpenIssueOptions struct {
	Title        *string `url:"title,omitempty" json:"title,omitempty"`
	Description  *string `url:"description,omitempty" json:"description,omitempty"`
	Labels       Labels  `url:"labels,omitempty" json:"labels,omitempty"`
	AssigneeIDs  []int   `url:"assignee_ids[],omitempty" json:"assignee_ids,omitempty"`
	MilestoneID  *int    `url:"milestone_id,omitempty" json:"milestone_id,omitempty"`
	Confidential *bool   `url:"confidential,omitempty" json:"confidential,omitempty"`
	DueDate      *string `url:"due_date,omitempty" json:"due_date,omitempty"`
	Weight       *int    `url:"weight,omitempty" json:"weight,omitempty"`
}

// ListIssuesOptions filters the issue listing. GitLab rejects conflicting
// combinations (author_id together with author_username, for example); the
// client sends whatever is set and lets the API decide.
type ListIssuesOptions struct {
	IIDs             []int      `url:"iids[],omitempty" json:"iids,omitempty"`
	State            *string    `url:"state,omitempty" json:"state,omitempty"`
	Labels           Labels     `url:"labels,omitempty" json:"labels,omitempty"`
	Milestone        *string    `url:"milestone,omitempty" json:"milestone,omitempty"`
	Scope            *string    `url:"scope,omitempty" json:"scope,omitempty"`
	AuthorID         *int       `url:"author_id,omitempty" json:"author_id,omitempty"`
	AuthorUsername   *string    `url:"author_username,omitempty" json:"author_username,omitempty"`
	AssigneeID       *int       `url:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	AssigneeUsername *string    `url:"assignee_username,omitempty" json:"assignee_username,omitempty"`
	MyReactionEmoji  *string    `url:"my_reaction_emoji,omitempty" json:"my_reaction_emoji,omitempty"`
	Search           *string    `url:"search,omitempty" json:"search,omitempty"`
	In               *string    `url:"in,omitempty" json:"in,omitempty"`
	OrderBy          *string    `url:"order_by,omitempty" json:"order_by,omitempty"`
	Sort             *string    `url:"sort,omitempty" json:"sort,omitempty"`
	Confidential     *bool      `url:"confidential,omitempty" json:"confidential,omitempty"`
	CreatedAfter     *time.Time `url:"created_after,omitempty" json:"created_after,omitempty"`
	CreatedBefore    *time.Time `url:"created_before,omitempty" json:"created_before,omitempty"`
	UpdatedAfter     *time.Time `url:"updated_after,omitempty" json:"updated_after,omitempty"`
	UpdatedBefore    *time.Time `url:"updated_before,omitempty" json:"updated_before,omitempty"`
	Page             *int       `url:"page,omitempty" json:"page,omitempty"`
	PerPage          *int       `url:"per_page,omitempty" json:"per_page,omitempty"`
}

// CloseIssueOptions identifies the issue to delete. IssueIID is the
// project-local number shown in the issue list, not the global issue id. It
// only ever appears in the URL path; nothing here is serialized as a query
// or body.
type CloseIssueOptions struct {
	IssueIID int `url:"-" json:"-"`
}

// addOptions encodes opt into the query string of s. The encoding is fixed:
// nil fields are omitted, booleans render as true/false, integer slices
// repeat their bracket-suffixed key, Labels join with commas, times render
// as RFC 3339, and keys are sorted lexicographically. A nil opt leaves s
// untouched.
func addOptions(s string, opt interface{}) (string, error) {
	v := reflect.ValueOf(opt)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	qs, err := query.Values(opt)
	if err != nil {
		return s, err
	}

	u.RawQuery = qs.Encode()
	return u.String(), nil
}
