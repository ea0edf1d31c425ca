package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/sigeodev/gitlab-management/gitlab"
	"github.com/sigeodev/gitlab-management/internal/config"
	"github.com/sigeodev/gitlab-management/internal/display"
)

const usageText = `Usage: gitlab-management <command> [flags]

Commands:
  projects    List projects visible to the token
  members     List all members of a project, inherited ones included
  issues      List issues of a project
  open        Open a new issue on a project
  close       Close an issue by its iid
  help        Show this message

Environment:
  GITLAB_PRIVATE_TOKEN    Token sent as the Private-Token header
  GITLAB_PROJECT_ID       Default project id when -project is not given
  GITLAB_HTTP_TIMEOUT     HTTP timeout in seconds (default 30)
  GITLAB_SKIP_TLS_VERIFY  Skip TLS certificate verification (default false)
  LOG_LEVEL               debug, info, warn or error (default info)

Run "gitlab-management <command> -h" for the flags of a command.
`

// Parses the command line, builds the GitLab client, and dispatches to the
// requested command.
func main() {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("2006-01-02 15:04:05"))
			}
			return a
		},
	})))

	// Log configuration (sanitized)
	slog.Debug("Configuration loaded",
		"log_level", cfg.LogLevel,
		"project_id", cfg.ProjectID,
		"token_configured", cfg.PrivateToken != "",
		"timeout_seconds", cfg.HTTPTimeoutSeconds,
	)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if command == "help" || command == "-h" || command == "-help" || command == "--help" {
		fmt.Print(usageText)
		return
	}

	commands := map[string]func(context.Context, *gitlab.Client, []string) error{
		"projects": runProjects,
		"members":  runMembers,
		"issues":   runIssues,
		"open":     runOpenIssue,
		"close":    runCloseIssue,
	}

	run, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	client := gitlab.NewClient(cfg.ProjectID, resolveToken(cfg), gitlab.WithHTTPClient(newHTTPClient(cfg)))

	if err := run(context.Background(), client, args); err != nil {
		slog.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

// resolveToken returns the configured token, prompting on the terminal when
// the environment does not provide one. An empty result is passed through:
// requests then go out unauthenticated and GitLab answers 401.
func resolveToken(cfg *config.Config) string {
	if cfg.PrivateToken != "" {
		return cfg.PrivateToken
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}

	fmt.Fprint(os.Stderr, "GitLab private token (empty for anonymous): ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		slog.Debug("Token prompt failed", "error", err)
		return ""
	}

	return strings.TrimSpace(string(tokenBytes))
}

// newHTTPClient builds the transport injected into the GitLab client,
// honouring the configured timeout and TLS settings. Debug level also turns
// on per-request logging.
func newHTTPClient(cfg *config.Config) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	// Check if TLS verification should be skipped
	if cfg.SkipTLSVerify {
		slog.Warn("TLS verification disabled for GitLab requests")
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	if cfg.GetLogLevel() == slog.LevelDebug {
		transport = &gitlab.LoggingRoundTripper{Base: transport}
	}

	return &http.Client{
		Timeout:   time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Transport: transport,
	}
}

// requireProject applies the -project override and ensures a project id is
// configured before a project-scoped request is built.
func requireProject(client *gitlab.Client, override string) error {
	if override != "" {
		client.SetProjectID(override)
	}

	if client.ProjectID() == "" {
		return fmt.Errorf("no project configured: pass -project or set GITLAB_PROJECT_ID")
	}

	return nil
}

func runProjects(ctx context.Context, client *gitlab.Client, args []string) error {
	fs := flag.NewFlagSet("projects", flag.ExitOnError)
	search := fs.String("search", "", "Filter projects by search term")
	archived := fs.Bool("archived", false, "Filter by archived state")
	owned := fs.Bool("owned", false, "Filter by ownership")
	membership := fs.Bool("membership", false, "Filter by membership")
	visibility := fs.String("visibility", "", "Filter by visibility: public, internal or private")
	page := fs.Int("page", 0, "Result page to request")
	perPage := fs.Int("per-page", 0, "Results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only flags the user actually passed become query parameters, so
	// -owned=false sends owned=false while leaving the flag out sends nothing.
	opt := &gitlab.ListProjectsOptions{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "search":
			opt.Search = gitlab.Ptr(*search)
		case "archived":
			opt.Archived = gitlab.Ptr(*archived)
		case "owned":
			opt.Owned = gitlab.Ptr(*owned)
		case "membership":
			opt.Membership = gitlab.Ptr(*membership)
		case "visibility":
			opt.Visibility = gitlab.Ptr(*visibility)
		case "page":
			opt.Page = gitlab.Ptr(*page)
		case "per-page":
			opt.PerPage = gitlab.Ptr(*perPage)
		}
	})

	return fetchAndPrintProjects(ctx, client, opt)
}

func runMembers(ctx context.Context, client *gitlab.Client, args []string) error {
	fs := flag.NewFlagSet("members", flag.ExitOnError)
	project := fs.String("project", "", "Project id or URL-encoded path (falls back to GITLAB_PROJECT_ID)")
	query := fs.String("query", "", "Filter members by name, email or username")
	page := fs.Int("page", 0, "Result page to request")
	perPage := fs.Int("per-page", 0, "Results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := requireProject(client, *project); err != nil {
		return err
	}

	opt := &gitlab.ListMembersOptions{}
	if *query != "" {
		opt.Query = gitlab.Ptr(*query)
	}
	if *page > 0 {
		opt.Page = gitlab.Ptr(*page)
	}
	if *perPage > 0 {
		opt.PerPage = gitlab.Ptr(*perPage)
	}

	return fetchAndPrintMembers(ctx, client, opt)
}

func runIssues(ctx context.Context, client *gitlab.Client, args []string) error {
	fs := flag.NewFlagSet("issues", flag.ExitOnError)
	project := fs.String("project", "", "Project id or URL-encoded path (falls back to GITLAB_PROJECT_ID)")
	state := fs.String("state", "", "Filter by state: opened or closed")
	labels := fs.String("labels", "", "Comma-separated label list, issues must carry all of them")
	author := fs.String("author", "", "Filter by author username")
	search := fs.String("search", "", "Filter by search term in title and description")
	iids := fs.String("iids", "", "Comma-separated list of issue iids")
	page := fs.Int("page", 0, "Result page to request")
	perPage := fs.Int("per-page", 0, "Results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := requireProject(client, *project); err != nil {
		return err
	}

	opt := &gitlab.ListIssuesOptions{}
	if *state != "" {
		opt.State = gitlab.Ptr(*state)
	}
	if *labels != "" {
		opt.Labels = gitlab.Labels(strings.Split(*labels, ","))
	}
	if *author != "" {
		opt.AuthorUsername = gitlab.Ptr(*author)
	}
	if *search != "" {
		opt.Search = gitlab.Ptr(*search)
	}
	if *iids != "" {
		ids, err := parseIDList(*iids)
		if err != nil {
			return fmt.Errorf("invalid -iids: %w", err)
		}
		opt.IIDs = ids
	}
	if *page > 0 {
		opt.Page = gitlab.Ptr(*page)
	}
	if *perPage > 0 {
		opt.PerPage = gitlab.Ptr(*perPage)
	}

	return fetchAndPrintIssues(ctx, client, opt)
}

func runOpenIssue(ctx context.Context, client *gitlab.Client, args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	project := fs.String("project", "", "Project id or URL-encoded path (falls back to GITLAB_PROJECT_ID)")
	title := fs.String("title", "", "Issue title (required)")
	description := fs.String("description", "", "Issue description, Markdown allowed")
	labels := fs.String("labels", "", "Comma-separated label list")
	assignees := fs.String("assignees", "", "Comma-separated assignee user ids")
	confidential := fs.Bool("confidential", false, "Create the issue as confidential")
	due := fs.String("due", "", "Due date in YYYY-MM-DD form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := requireProject(client, *project); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("a title is required: pass -title")
	}

	opt := &gitlab.OpenIssueOptions{Title: gitlab.Ptr(*title)}
	if *description != "" {
		opt.Description = gitlab.Ptr(*description)
	}
	if *labels != "" {
		opt.Labels = gitlab.Labels(strings.Split(*labels, ","))
	}
	if *assignees != "" {
		ids, err := parseIDList(*assignees)
		if err != nil {
			return fmt.Errorf("invalid -assignees: %w", err)
		}
		opt.AssigneeIDs = ids
	}
	if *confidential {
		opt.Confidential = gitlab.Ptr(true)
	}
	if *due != "" {
		opt.DueDate = gitlab.Ptr(*due)
	}

	return openIssue(ctx, client, opt)
}

func runCloseIssue(ctx context.Context, client *gitlab.Client, args []string) error {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	project := fs.String("project", "", "Project id or URL-encoded path (falls back to GITLAB_PROJECT_ID)")
	iid := fs.Int("iid", 0, "Project-local issue iid (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := requireProject(client, *project); err != nil {
		return err
	}
	if *iid <= 0 {
		return fmt.Errorf("a positive issue iid is required: pass -iid")
	}

	return closeIssue(ctx, client, &gitlab.CloseIssueOptions{IssueIID: *iid})
}

func fetchAndPrintProjects(ctx context.Context, api gitlab.ProjectManager, opt *gitlab.ListProjectsOptions) error {
	resp, err := api.ListProjects(ctx, opt)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	var projects []gitlab.Project
	if err := json.Unmarshal(resp.Body, &projects); err != nil {
		return fmt.Errorf("error decoding project list: %w", err)
	}

	display.PrintProjects(os.Stdout, projects)
	return nil
}

func fetchAndPrintMembers(ctx context.Context, api gitlab.ProjectManager, opt *gitlab.ListMembersOptions) error {
	resp, err := api.ListMembers(ctx, opt)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	var members []gitlab.Member
	if err := json.Unmarshal(resp.Body, &members); err != nil {
		return fmt.Errorf("error decoding member list: %w", err)
	}

	display.PrintMembers(os.Stdout, members)
	return nil
}

func fetchAndPrintIssues(ctx context.Context, api gitlab.ProjectManager, opt *gitlab.ListIssuesOptions) error {
	resp, err := api.ListIssues(ctx, opt)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	var issues []gitlab.Issue
	if err := json.Unmarshal(resp.Body, &issues); err != nil {
		return fmt.Errorf("error decoding issue list: %w", err)
	}

	display.PrintIssues(os.Stdout, issues)
	return nil
}

func openIssue(ctx context.Context, api gitlab.ProjectManager, opt *gitlab.OpenIssueOptions) error {
	resp, err := api.OpenIssue(ctx, opt)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	var issue gitlab.Issue
	if err := json.Unmarshal(resp.Body, &issue); err != nil {
		return fmt.Errorf("error decoding created issue: %w", err)
	}

	slog.Info("Issue opened", "iid", issue.IID, "project_id", issue.ProjectID)
	fmt.Printf("Opened issue #%d: %s\n", issue.IID, issue.WebURL)
	return nil
}

func closeIssue(ctx context.Context, api gitlab.ProjectManager, opt *gitlab.CloseIssueOptions) error {
	resp, err := api.CloseIssue(ctx, opt)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	slog.Info("Issue closed", "iid", opt.IssueIID)
	fmt.Printf("Closed issue #%d\n", opt.IssueIID)
	return nil
}

// checkResponse surfaces a non-2xx GitLab reply as a readable error. The
// client hands every response back verbatim, so interpreting the status is
// this tool's job: 401 means a bad or missing token, 404 a missing project
// or issue, 422 a validation failure.
func checkResponse(resp *gitlab.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return fmt.Errorf("GitLab returned %s: %s", resp.Status, gitlabErrorMessage(resp.Body))
}

// gitlabErrorMessage pulls the message or error field out of a GitLab error
// body, falling back to the raw payload.
func gitlabErrorMessage(body []byte) string {
	var payload struct {
		Message interface{} `json:"message"`
		Error   string      `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != nil {
			return fmt.Sprintf("%v", payload.Message)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	return strings.TrimSpace(string(body))
}

func parseIDList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))

	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
