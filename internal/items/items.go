package items

import (
	"path"
	"strings"
)

// Item is one unit of batch work.
type Item struct {
	// Project is the raw identifier as read from the input source.
	Project string
	// Token is a filesystem-safe label derived from Project, used for
	// shard and temp file names. Never empty for a non-blank Project.
	Token string
}

// New builds an Item for the given project identifier.
func New(project string) Item {
	return Item{Project: project, Token: DeriveToken(project)}
}

// DeriveToken reduces a project identifier to a short label safe for file
// names. It keeps the last underscore-delimited segment of the path base,
// replaces spaces, and strips common list-file suffixes.
func DeriveToken(project string) string {
	name := path.Base(strings.ReplaceAll(project, "\\", "/"))
	token := name
	if idx := strings.LastIndex(name, "_"); idx >= 0 {
		token = name[idx+1:]
	}
	token = strings.ReplaceAll(token, " ", "-")
	for _, suffix := range []string{".txt", ".csv", ".list"} {
		token = strings.ReplaceAll(token, suffix, "")
	}
	token = strings.Trim(token, ".-_")
	if token == "" {
		token = name
	}
	if token == "" {
		token = project
	}
	return token
}

// FromProjects maps raw identifiers to Items, preserving order.
func FromProjects(projects []string) []Item {
	out := make([]Item, 0, len(projects))
	for _, project := range projects {
		out = append(out, New(project))
	}
	return out
}
