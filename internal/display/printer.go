// Package display renders GitLab API payloads as aligned tables for the CLI.
package display

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/sigeodev/gitlab-management/gitlab"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// PrintProjects renders a project listing.
func PrintProjects(w io.Writer, projects []gitlab.Project) {
	table := newTable(w, []string{"ID", "Path", "Visibility", "Archived", "URL"})

	for _, p := range projects {
		table.Append([]string{
			strconv.Itoa(p.ID),
			p.PathWithNamespace,
			p.Visibility,
			strconv.FormatBool(p.Archived),
			p.WebURL,
		})
	}

	table.Render()
}

// PrintMembers renders a member listing with named access levels.
func PrintMembers(w io.Writer, members []gitlab.Member) {
	table := newTable(w, []string{"ID", "Username", "Name", "Access", "State"})

	for _, m := range members {
		table.Append([]string{
			strconv.Itoa(m.ID),
			m.Username,
			m.Name,
			m.AccessLevel.String(),
			m.State,
		})
	}

	table.Render()
}

// PrintIssues renders an issue listing keyed by the project-local iid.
func PrintIssues(w io.Writer, issues []gitlab.Issue) {
	table := newTable(w, []string{"IID", "Title", "State", "Labels", "Author"})

	for _, i := range issues {
		table.Append([]string{
			strconv.Itoa(i.IID),
			i.Title,
			i.State,
			strings.Join(i.Labels, ","),
			i.Author.Username,
		})
	}

	table.Render()
}
