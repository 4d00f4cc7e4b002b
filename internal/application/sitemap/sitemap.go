// Package sitemap builds sitemap.xml from rendered pages and the works catalog.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
)

// DateLayout is the lastmod format.
const DateLayout = "2006-01-02"

// Entry is one <url> element.
type Entry struct {
	Loc     string
	LastMod time.Time
}

var urlsetTemplate = template.Must(template.New("urlset").Funcs(template.FuncMap{
	"xml":  xmlEscape,
	"date": func(t time.Time) string { return t.UTC().Format(DateLayout) },
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
{{- range .}}
  <url>
    <loc>{{xml .Loc}}</loc>
    {{- if not .LastMod.IsZero}}
    <lastmod>{{date .LastMod}}</lastmod>
    {{- end}}
  </url>
{{- end}}
</urlset>
`))

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Render writes the urlset for entries, sorted by location.
func Render(w io.Writer, entries []Entry) error {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Loc < sorted[j].Loc })
	return urlsetTemplate.Execute(w, sorted)
}

// Walk collects every .html file under root as an entry under baseURL.
// index.html maps to its directory URL.
func Walk(root, baseURL string) ([]Entry, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Loc: pageURL(base, filepath.ToSlash(rel)), LastMod: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return entries, nil
}

// FromWorks returns the index page and one entry per work.
func FromWorks(baseURL string, works []*content.Work) ([]Entry, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(works)+1)
	var newest time.Time
	for _, w := range works {
		if w.Draft {
			continue
		}
		mod := w.ModTime
		if mod.IsZero() {
			mod = w.Published
		}
		if mod.After(newest) {
			newest = mod
		}
		entries = append(entries, Entry{Loc: base.JoinPath("works", w.Slug).String(), LastMod: mod})
	}
	entries = append(entries, Entry{Loc: base.String() + "/", LastMod: newest})
	return entries, nil
}

// Merge combines entry sets; later sets win for duplicate locations.
func Merge(sets ...[]Entry) []Entry {
	byLoc := make(map[string]Entry)
	for _, set := range sets {
		for _, e := range set {
			byLoc[e.Loc] = e
		}
	}
	out := make([]Entry, 0, len(byLoc))
	for _, e := range byLoc {
		out = append(out, e)
	}
	return out
}

// WriteFile renders entries to path, replacing it atomically.
func WriteFile(path string, entries []Entry) error {
	var buf bytes.Buffer
	if err := Render(&buf, entries); err != nil {
		return fmt.Errorf("failed to render sitemap: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create sitemap directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sitemap-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create sitemap: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace sitemap: %w", err)
	}
	return nil
}

func parseBase(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	return u, nil
}

func pageURL(base *url.URL, rel string) string {
	dir, file := path.Split(rel)
	if strings.EqualFold(file, "index.html") {
		return base.String() + "/" + dir
	}
	return base.JoinPath(rel).String()
}
