package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---")

// errNoFrontMatter marks a file that does not open with a front matter fence.
var errNoFrontMatter = errors.New("missing front matter")

// frontMatter is the YAML header of a work file.
type frontMatter struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Kind      string `yaml:"kind"`
	Published string `yaml:"published"`
	Cover     string `yaml:"cover"`
	Summary   string `yaml:"summary"`
	Draft     bool   `yaml:"draft"`
}

// splitFrontMatter separates the YAML header from the markdown body.
func splitFrontMatter(src []byte) (frontMatter, []byte, error) {
	var fm frontMatter

	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(src, fence) {
		return fm, nil, errNoFrontMatter
	}

	rest := src[len(fence):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return fm, nil, errNoFrontMatter
	}

	header := rest[:end]
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, body, nil
}

var publishedLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04"}

// parsePublished accepts a date or a full timestamp. Empty means unset.
func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised published date %q", s)
}
