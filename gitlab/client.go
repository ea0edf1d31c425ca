// Package gitlab provides a thin client for the GitLab REST API v4 project
// endpoints: listing projects, listing members, and opening, listing and
// closing issues. Requests are forwarded verbatim and responses come back
// untouched; interpreting status codes and bodies is the caller's job.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// apiURL is the projects root every request is built from. It is fixed:
// the client always talks to gitlab.com.
const apiURL = "https://gitlab.com/api/v4/projects"

// privateTokenHeader carries the personal access token GitLab authenticates with.
const privateTokenHeader = "Private-Token"

const defaultTimeout = 30 * time.Second

// Client wraps the GitLab projects API. Configuration (project id, token,
// headers) is mutable through the setters and is read fresh by every request
// operation. The client performs no locking: mutating configuration while a
// request is in flight has an unspecified outcome, so callers that share a
// client across goroutines must serialize setter calls themselves.
type Client struct {
	httpClient HTTPClient
	projectID  string
	token      string
	headers    map[string]string
}

// ClientOption configures optional behaviour at construction time.
type ClientOption func(*Client)

// WithHTTPClient injects the transport used to execute requests. The default
// is an *http.Client with a 30 second timeout.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a client for the GitLab projects API. Both arguments are
// optional: empty values leave the corresponding configuration unset. A
// non-empty token is stored and merged into the headers as Private-Token,
// exactly as SetPrivateToken would.
func NewClient(projectID, token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if projectID != "" {
		c.SetProjectID(projectID)
	}
	if token != "" {
		c.SetPrivateToken(token)
	}

	slog.Debug("GitLab client initialized",
		"project_id", projectID,
		"token_configured", token != "",
	)

	return c
}

// SetProjectID replaces the project identifier used by project-scoped calls.
// The value is either the numeric project id or the URL-encoded path of the
// project.
func (c *Client) SetProjectID(projectID string) {
	c.projectID = projectID
}

// ProjectID returns the configured project identifier, empty when unset.
func (c *Client) ProjectID() string {
	return c.projectID
}

// SetPrivateToken replaces the stored token and merges a Private-Token entry
// into the client's headers. Previously set headers are preserved.
func (c *Client) SetPrivateToken(token string) {
	c.token = token
	if c.headers == nil {
		c.headers = make(map[string]string)
	}
	c.headers[privateTokenHeader] = token
}

// PrivateToken returns the configured token, empty when unset.
func (c *Client) PrivateToken() string {
	return c.token
}

// SetHeaders merges the given mapping into the client's headers. Existing
// keys are overwritten on collision and everything else is preserved; the
// header set is never replaced wholesale.
func (c *Client) SetHeaders(headers map[string]string) {
	if c.headers == nil {
		c.headers = make(map[string]string)
	}
	for k, v := range headers {
		c.headers[k] = v
	}
}

// Headers returns a copy of the client's current headers, so callers can
// inspect them without aliasing internal state.
func (c *Client) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

// Response is the raw result of a request operation: the status line, the
// response headers, and the fully read body. The client never interprets
// status codes, so a 4xx or 5xx from GitLab lands here instead of in an
// error; GitLab's JSON error payload is in Body.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// ListProjects fetches the projects visible to the caller: GET {apiURL}
// with opt encoded as the query string. A nil opt sends no query at all.
func (c *Client) ListProjects(ctx context.Context, opt *ListProjectsOptions) (*Response, error) {
	slog.Debug("Listing GitLab projects")

	u, err := addOptions(apiURL, opt)
	if err != nil {
		slog.Error("Failed to encode query options", "error", err)
		return nil, fmt.Errorf("error encoding query options: %w", err)
	}

	return c.do(ctx, http.MethodGet, u, nil)
}

// ListMembers fetches all members of the configured project, including
// members inherited from ancestor groups: GET
// {apiURL}/{projectID}/members/all.
func (c *Client) ListMembers(ctx context.Context, opt *ListMembersOptions) (*Response, error) {
	slog.Debug("Listing GitLab project members", "project_id", c.projectID)

	u, err := addOptions(fmt.Sprintf("%s/%s/members/all", apiURL, c.projectID), opt)
	if err != nil {
		slog.Error("Failed to encode query options", "error", err, "project_id", c.projectID)
		return nil, fmt.Errorf("error encoding query options: %w", err)
	}

	return c.do(ctx, http.MethodGet, u, nil)
}

// OpenIssue creates an issue on the configured project: POST
// {apiURL}/{projectID}/issues with opt serialized as the JSON body. Only the
// fields the caller set appear in the payload; a nil opt sends an empty
// object and GitLab answers with its usual validation error.
func (c *Client) OpenIssue(ctx context.Context, opt *OpenIssueOptions) (*Response, error) {
	slog.Debug("Opening GitLab issue", "project_id", c.projectID)

	if opt == nil {
		opt = &OpenIssueOptions{}
	}

	body, err := json.Marshal(opt)
	if err != nil {
		slog.Error("Failed to marshal issue request", "error", err, "project_id", c.projectID)
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	u := fmt.Sprintf("%s/%s/issues", apiURL, c.projectID)
	return c.do(ctx, http.MethodPost, u, bytes.NewBuffer(body))
}

// ListIssues fetches issues of the configured project: GET
// {apiURL}/{projectID}/issues with opt encoded as the query string.
func (c *Client) ListIssues(ctx context.Context, opt *ListIssuesOptions) (*Response, error) {
	slog.Debug("Listing GitLab issues", "project_id", c.projectID)

	u, err := addOptions(fmt.Sprintf("%s/%s/issues", apiURL, c.projectID), opt)
	if err != nil {
		slog.Error("Failed to encode query options", "error", err, "project_id", c.projectID)
		return nil, fmt.Errorf("error encoding query options: %w", err)
	}

	return c.do(ctx, http.MethodGet, u, nil)
}

// CloseIssue deletes an issue from the configured project by its
// project-local iid: DELETE {apiURL}/{projectID}/issues/{iid}. No query
// string and no body are sent.
func (c *Client) CloseIssue(ctx context.Context, opt *CloseIssueOptions) (*Response, error) {
	if opt == nil {
		opt = &CloseIssueOptions{}
	}

	slog.Debug("Closing GitLab issue",
		"project_id", c.projectID,
		"issue_iid", opt.IssueIID,
	)

	u := fmt.Sprintf("%s/%s/issues/%d", apiURL, c.projectID, opt.IssueIID)
	return c.do(ctx, http.MethodDelete, u, nil)
}

// do builds the request, applies the client's current headers, executes it
// through the injected transport, and returns the response verbatim. Errors
// are transport-level only (dial, timeout, canceled context, body read);
// every HTTP status comes back inside Response.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*Response, error) {
	slog.Debug("Creating HTTP request", "url", url, "method", method)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		slog.Error("Failed to create HTTP request", "error", err, "url", url)
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	slog.Debug("Sending HTTP request to GitLab API", "url", url, "method", method)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send HTTP request", "error", err, "url", url, "method", method)
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Failed to read response body", "error", err, "url", url)
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	slog.Debug("Received response from GitLab API",
		"status_code", resp.StatusCode,
		"url", url,
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
