// Package templates renders folio's pages and the engagement widget skeleton.
package templates

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
)

// Host selects which runtime drives the widget on a rendered page.
type Host string

const (
	// HostServer posts every widget action to the server through htmx.
	HostServer Host = "server"
	// HostWasm loads the WebAssembly build, which keeps engagement in the
	// browser's local storage.
	HostWasm Host = "wasm"
)

// ParseHost maps a configured value to a Host, defaulting to the server.
func ParseHost(s string) Host {
	if Host(s) == HostWasm {
		return HostWasm
	}
	return HostServer
}

// HTMXSrc is the htmx build the server host loads.
const HTMXSrc = "https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js"

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"isoDate": func(t time.Time) string { return t.Format("2006-01-02") },
}

var pageTemplates = template.Must(template.New("pages").Funcs(funcs).Parse(
	`{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
{{if .Canonical}}<link rel="canonical" href="{{.Canonical}}">{{end}}
<link rel="stylesheet" href="/static/folio.css">
</head>
<body data-host="{{.Host}}">
<header class="site-header"><a href="/" class="site-title">{{.SiteName}}</a></header>
<main>{{end}}` +

		`{{define "foot"}}</main>
{{if eq .Host "wasm"}}<script src="/static/wasm_exec.js"></script>{{else}}<script src="{{.HTMXSrc}}"></script>{{end}}
<script src="/static/folio.js" defer></script>
</body>
</html>{{end}}` +

		`{{define "index"}}{{template "head" .Page}}
<h1>Works</h1>
{{if .Works}}<ul class="works">
{{range .Works}}<li class="work-item work-{{.Kind}}">
<a href="/works/{{.Slug}}">{{.Title}}</a>
<span class="work-kind">{{.Kind.Label}}</span>
{{if not .Published.IsZero}}<time datetime="{{isoDate .Published}}">{{date .Published}}</time>{{end}}
{{if .Summary}}<p class="work-summary">{{.Summary}}</p>{{end}}
</li>
{{end}}</ul>{{else}}<p class="empty">Nothing published yet.</p>{{end}}
{{template "foot" .Page}}{{end}}` +

		`{{define "work"}}{{template "head" .Page}}
<article class="work work-{{.Work.Kind}}">
{{.Cover}}
<h1>{{.Work.Title}}</h1>
<p class="work-byline"><span class="work-kind">{{.Work.Kind.Label}}</span>{{if not .Work.Published.IsZero}} · <time datetime="{{isoDate .Work.Published}}">{{date .Work.Published}}</time>{{end}}</p>
<div class="work-body">{{.Work.Body}}</div>
</article>
{{.Widget}}
{{.Modal}}
{{.Toasts}}
{{template "foot" .Page}}{{end}}` +

		`{{define "error"}}{{template "head" .Page}}
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to all works</a></p>
{{template "foot" .Page}}{{end}}`,
))

// Page carries what every layout needs.
type Page struct {
	SiteName    string
	Title       string
	Description string
	Canonical   string
	Host        Host
	HTMXSrc     string
}

// IndexPage lists the published works.
type IndexPage struct {
	Page  Page
	Works []*content.Work
}

// WorkPage shows one work with its engagement widget. The widget parts are
// serialized from the virtual document the widget rendered into.
type WorkPage struct {
	Page   Page
	Work   *content.Work
	Cover  template.HTML
	Widget template.HTML
	Modal  template.HTML
	Toasts template.HTML
}

// ErrorPage is shown for missing works and server failures.
type ErrorPage struct {
	Page    Page
	Heading string
	Message string
}

// NewWorkPage serializes the widget nodes into a WorkPage.
func NewWorkPage(page Page, work *content.Work, nodes WidgetNodes) WorkPage {
	return WorkPage{
		Page:   page,
		Work:   work,
		Cover:  template.HTML(nodes.Cover.OuterHTML()),
		Widget: template.HTML(nodes.Root.OuterHTML()),
		Modal:  template.HTML(nodes.Modal.OuterHTML()),
		Toasts: template.HTML(nodes.Toasts.OuterHTML()),
	}
}

func withDefaults(p Page) Page {
	if p.SiteName == "" {
		p.SiteName = "Folio"
	}
	if p.Host == "" {
		p.Host = HostServer
	}
	if p.HTMXSrc == "" {
		p.HTMXSrc = HTMXSrc
	}
	return p
}

// RenderIndex writes the works index.
func RenderIndex(w io.Writer, p IndexPage) error {
	p.Page = withDefaults(p.Page)
	if err := pageTemplates.ExecuteTemplate(w, "index", p); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	return nil
}

// RenderWork writes a work page.
func RenderWork(w io.Writer, p WorkPage) error {
	p.Page = withDefaults(p.Page)
	if err := pageTemplates.ExecuteTemplate(w, "work", p); err != nil {
		return fmt.Errorf("failed to render work %s: %w", p.Work.Slug, err)
	}
	return nil
}

// RenderError writes an error page.
func RenderError(w io.Writer, p ErrorPage) error {
	p.Page = withDefaults(p.Page)
	if err := pageTemplates.ExecuteTemplate(w, "error", p); err != nil {
		return fmt.Errorf("failed to render error page: %w", err)
	}
	return nil
}
