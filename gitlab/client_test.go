//go:build unit

package gitlab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures the outgoing request and answers with a canned
// response, so tests can assert on exactly what would reach gitlab.com.
type recordingTransport struct {
	req        *http.Request
	body       []byte
	statusCode int
	response   string
	err        error
}

func (rt *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	rt.req = req
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		rt.body = body
	}

	if rt.err != nil {
		return nil, rt.err
	}

	code := rt.statusCode
	if code == 0 {
		code = http.StatusOK
	}

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(rt.response)),
	}, nil
}

// rewriteTransport forwards requests to a local test server while keeping
// the request path, query, and headers intact.
type rewriteTransport struct {
	server *httptest.Server
}

func (rt *rewriteTransport) Do(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(rt.server.URL)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	return rt.server.Client().Do(req)
}

// TestClient_ConfigAccessors tests the configuration surface: constructor
// defaults, token-to-header injection, and header merge semantics.
func TestClient_ConfigAccessors(t *testing.T) {
	t.Run("zero-value construction leaves everything unset", func(t *testing.T) {
		client := NewClient("", "")

		assert.Empty(t, client.ProjectID())
		assert.Empty(t, client.PrivateToken())
		assert.Empty(t, client.Headers())

		_, present := client.Headers()[privateTokenHeader]
		assert.False(t, present)
	})

	t.Run("constructor stores both values and injects the token header", func(t *testing.T) {
		client := NewClient("42", "glpat-abc")

		assert.Equal(t, "42", client.ProjectID())
		assert.Equal(t, "glpat-abc", client.PrivateToken())
		assert.Equal(t, "glpat-abc", client.Headers()[privateTokenHeader])
	})

	t.Run("setting the token merges with previously set headers", func(t *testing.T) {
		client := NewClient("", "")
		client.SetHeaders(map[string]string{"Accept": "application/json"})
		client.SetPrivateToken("glpat-abc")

		headers := client.Headers()
		assert.Equal(t, "application/json", headers["Accept"])
		assert.Equal(t, "glpat-abc", headers[privateTokenHeader])
	})

	t.Run("second header set wins on collisions and keeps the union", func(t *testing.T) {
		client := NewClient("", "glpat-abc")
		client.SetHeaders(map[string]string{"X-Custom": "first", "Accept": "application/json"})
		client.SetHeaders(map[string]string{"X-Custom": "second", "X-Other": "kept"})

		headers := client.Headers()
		assert.Equal(t, "second", headers["X-Custom"])
		assert.Equal(t, "application/json", headers["Accept"])
		assert.Equal(t, "kept", headers["X-Other"])
		assert.Equal(t, "glpat-abc", headers[privateTokenHeader])
	})

	t.Run("returned headers are a copy", func(t *testing.T) {
		client := NewClient("", "glpat-abc")

		tampered := client.Headers()
		tampered[privateTokenHeader] = "stolen"

		assert.Equal(t, "glpat-abc", client.Headers()[privateTokenHeader])
	})

	t.Run("setters replace previously stored values", func(t *testing.T) {
		client := NewClient("42", "old-token")
		client.SetProjectID("7")
		client.SetPrivateToken("new-token")

		assert.Equal(t, "7", client.ProjectID())
		assert.Equal(t, "new-token", client.PrivateToken())
		assert.Equal(t, "new-token", client.Headers()[privateTokenHeader])
	})
}

// TestClient_ListProjects tests URL construction for the project listing.
func TestClient_ListProjects(t *testing.T) {
	tests := []struct {
		name    string
		opt     *ListProjectsOptions
		wantURL string
	}{
		{
			name:    "nil options send the bare endpoint",
			opt:     nil,
			wantURL: "https://gitlab.com/api/v4/projects",
		},
		{
			name: "boolean filters keep an explicit false",
			opt: &ListProjectsOptions{
				Archived: Ptr(true),
				Owned:    Ptr(false),
			},
			wantURL: "https://gitlab.com/api/v4/projects?archived=true&owned=false",
		},
		{
			name: "string filters are percent-encoded",
			opt: &ListProjectsOptions{
				Search:     Ptr("drift guardian"),
				Visibility: Ptr("private"),
			},
			wantURL: "https://gitlab.com/api/v4/projects?search=drift+guardian&visibility=private",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingTransport{response: `[]`}
			client := NewClient("", "test-token", WithHTTPClient(rt))

			resp, err := client.ListProjects(context.Background(), tt.opt)

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.MethodGet, rt.req.Method)
			assert.Equal(t, tt.wantURL, rt.req.URL.String())
			assert.Equal(t, "test-token", rt.req.Header.Get(privateTokenHeader))
			assert.Nil(t, rt.req.Body)
		})
	}
}

// TestClient_ListMembers tests the members/all URL form and that the project
// id is read at call time, not captured at construction.
func TestClient_ListMembers(t *testing.T) {
	rt := &recordingTransport{response: `[]`}
	client := NewClient("42", "test-token", WithHTTPClient(rt))

	_, err := client.ListMembers(context.Background(), &ListMembersOptions{Query: Ptr("smith")})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rt.req.Method)
	assert.Equal(t, "https://gitlab.com/api/v4/projects/42/members/all?query=smith", rt.req.URL.String())

	client.SetProjectID("7")

	_, err = client.ListMembers(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com/api/v4/projects/7/members/all", rt.req.URL.String())
}

// TestClient_OpenIssue tests the POST form: URL, headers, and a body holding
// exactly the fields the caller set.
func TestClient_OpenIssue(t *testing.T) {
	tests := []struct {
		name     string
		opt      *OpenIssueOptions
		wantBody string
	}{
		{
			name: "body carries exactly the set fields",
			opt: &OpenIssueOptions{
				Title:       Ptr("Issue example"),
				Description: Ptr("It's an example"),
				Labels:      Labels{"Example"},
			},
			wantBody: `{"title":"Issue example","description":"It's an example","labels":"Example"}`,
		},
		{
			name:     "nil options send an empty object",
			opt:      nil,
			wantBody: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingTransport{
				statusCode: http.StatusCreated,
				response:   `{"id":1,"iid":3,"project_id":7,"title":"Issue example","state":"opened"}`,
			}
			client := NewClient("7", "glpat-abc", WithHTTPClient(rt))

			resp, err := client.OpenIssue(context.Background(), tt.opt)

			require.NoError(t, err)
			assert.Equal(t, http.MethodPost, rt.req.Method)
			assert.Equal(t, "https://gitlab.com/api/v4/projects/7/issues", rt.req.URL.String())
			assert.Equal(t, "application/json", rt.req.Header.Get("Content-Type"))
			assert.Equal(t, "glpat-abc", rt.req.Header.Get(privateTokenHeader))
			assert.JSONEq(t, tt.wantBody, string(rt.body))
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
		})
	}
}

// TestClient_ListIssues tests query construction for the issue listing,
// including the conventions for arrays and labels and that absent fields
// never reach the wire.
func TestClient_ListIssues(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		opt       *ListIssuesOptions
		wantURL   string
	}{
		{
			name:      "state and labels",
			projectID: "42",
			opt: &ListIssuesOptions{
				State:  Ptr("opened"),
				Labels: Labels{"bug", "confirmed"},
			},
			wantURL: "https://gitlab.com/api/v4/projects/42/issues?labels=bug%2Cconfirmed&state=opened",
		},
		{
			name:      "iids repeat the bracket key",
			projectID: "42",
			opt: &ListIssuesOptions{
				IIDs: []int{5, 9},
			},
			wantURL: "https://gitlab.com/api/v4/projects/42/issues?iids%5B%5D=5&iids%5B%5D=9",
		},
		{
			name:      "conflicting author filters are sent untouched",
			projectID: "42",
			opt: &ListIssuesOptions{
				AuthorID:       Ptr(14),
				AuthorUsername: Ptr("root"),
			},
			wantURL: "https://gitlab.com/api/v4/projects/42/issues?author_id=14&author_username=root",
		},
		{
			name:      "absent fields stay absent",
			projectID: "42",
			opt: &ListIssuesOptions{
				State: Ptr("closed"),
			},
			wantURL: "https://gitlab.com/api/v4/projects/42/issues?state=closed",
		},
		{
			name:      "unset project id still sends the malformed path",
			projectID: "",
			opt:       nil,
			wantURL:   "https://gitlab.com/api/v4/projects//issues",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingTransport{response: `[]`}
			client := NewClient(tt.projectID, "test-token", WithHTTPClient(rt))

			_, err := client.ListIssues(context.Background(), tt.opt)

			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, rt.req.Method)
			assert.Equal(t, tt.wantURL, rt.req.URL.String())
		})
	}
}

// TestClient_CloseIssue tests the DELETE form: iid in the path, no query,
// no body.
func TestClient_CloseIssue(t *testing.T) {
	rt := &recordingTransport{statusCode: http.StatusNoContent}
	client := NewClient("7", "test-token", WithHTTPClient(rt))

	resp, err := client.CloseIssue(context.Background(), &CloseIssueOptions{IssueIID: 42})

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, rt.req.Method)
	assert.Equal(t, "https://gitlab.com/api/v4/projects/7/issues/42", rt.req.URL.String())
	assert.Empty(t, rt.req.URL.RawQuery)
	assert.Nil(t, rt.req.Body)
	assert.Equal(t, "test-token", rt.req.Header.Get(privateTokenHeader))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// TestClient_CustomHeaders tests that merged headers reach the wire.
func TestClient_CustomHeaders(t *testing.T) {
	rt := &recordingTransport{response: `[]`}
	client := NewClient("42", "test-token", WithHTTPClient(rt))
	client.SetHeaders(map[string]string{"X-Request-Id": "abc-123"})

	_, err := client.ListProjects(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "abc-123", rt.req.Header.Get("X-Request-Id"))
	assert.Equal(t, "test-token", rt.req.Header.Get(privateTokenHeader))
}

// TestClient_NoTokenNoHeader tests that requests go out without a
// Private-Token header when no token was ever configured.
func TestClient_NoTokenNoHeader(t *testing.T) {
	rt := &recordingTransport{response: `[]`}
	client := NewClient("", "", WithHTTPClient(rt))

	_, err := client.ListProjects(context.Background(), nil)

	require.NoError(t, err)
	_, present := rt.req.Header[privateTokenHeader]
	assert.False(t, present)
}

// TestClient_ResponsePassthrough tests that responses come back verbatim,
// success and error statuses alike.
func TestClient_ResponsePassthrough(t *testing.T) {
	tests := []struct {
		name         string
		responseCode int
		responseBody string
	}{
		{
			name:         "success body is returned untouched",
			responseCode: http.StatusOK,
			responseBody: `[{"id":76,"iid":6,"title":"Broken deploy"}]`,
		},
		{
			name:         "error statuses are data, not errors",
			responseCode: http.StatusNotFound,
			responseBody: `{"message":"404 Project Not Found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Verify request method, path, and headers
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v4/projects/7/issues", r.URL.Path)
				assert.Equal(t, "test-token", r.Header.Get(privateTokenHeader))

				w.Header().Set("X-Request-Id", "0xdeadbeef")
				w.WriteHeader(tt.responseCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer mockServer.Close()

			client := NewClient("7", "test-token", WithHTTPClient(&rewriteTransport{server: mockServer}))

			resp, err := client.ListIssues(context.Background(), nil)

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.responseCode, resp.StatusCode)
			assert.JSONEq(t, tt.responseBody, string(resp.Body))
			assert.Equal(t, "0xdeadbeef", resp.Header.Get("X-Request-Id"))
		})
	}
}

// TestClient_TransportErrorPropagation tests that transport failures surface
// as wrapped errors with no response.
func TestClient_TransportErrorPropagation(t *testing.T) {
	rt := &recordingTransport{err: errors.New("dial tcp: connection refused")}
	client := NewClient("7", "test-token", WithHTTPClient(rt))

	resp, err := client.ListProjects(context.Background(), nil)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "error sending request")
	assert.Contains(t, err.Error(), "connection refused")
}

// TestClient_ProjectManagerContract ensures the concrete client satisfies
// the exported interface.
func TestClient_ProjectManagerContract(t *testing.T) {
	var manager ProjectManager = NewClient("7", "test-token")
	assert.NotNil(t, manager)
}
