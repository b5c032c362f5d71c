package workdir

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Slug converts a file or graph name to a file-system friendly slug.
// Example: "My Graph (v2).png" -> "my-graph-v2"
func Slug(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))

	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = hyphenRuns.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// ExportPath returns where an MP3 export for the named graph is written.
func ExportPath(graphName string) (string, error) {
	slug := Slug(graphName)
	if slug == "" {
		slug = "graph"
	}

	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "exports", fmt.Sprintf("%s.mp3", slug)), nil
}
