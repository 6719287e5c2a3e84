package api

import (
	"html/template"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
	"github.com/dskt-cc/docs/internal/docroute"
	"github.com/dskt-cc/docs/internal/doctree"
)

type navSection struct {
	config.Section
	Documents []content.DocumentSummary
}

type pageData struct {
	Meta       docroute.PageMeta
	Nav        []navSection
	Section    string
	Slug       string
	Date       string
	Outline    []*doctree.Heading
	Body       template.HTML
	NotFound   bool
	Reason     string
	Stylesheet string
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"docPath": docroute.Path,
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}}</title>
{{- with .Meta.Description}}
<meta name="description" content="{{.}}">
{{- end}}
<link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
<nav class="docs-nav">
{{- range .Nav}}
<section>
<h2>{{.Title}}</h2>
<ul>
{{- $key := .Key}}
{{- range .Documents}}
<li{{if and (eq $key $.Section) (eq .Slug $.Slug)}} class="active"{{end}}><a href="{{docPath $key .Slug}}">{{.Title}}</a></li>
{{- end}}
</ul>
</section>
{{- end}}
</nav>
<main>
{{- if .NotFound}}
<h1>Page not found</h1>
<p>{{.Reason}}</p>
{{- else}}
<article>
{{- with .Date}}
<time datetime="{{.}}">{{.}}</time>
{{- end}}
{{.Body}}
</article>
{{- end}}
</main>
{{- if .Outline}}
<aside class="docs-outline">
<h2>On this page</h2>
{{template "outline" .Outline}}
</aside>
{{- end}}
</body>
</html>
{{define "outline"}}<ul>
{{- range .}}
<li><a href="#{{.ID}}">{{.Title}}</a>{{if .Children}}{{template "outline" .Children}}{{end}}</li>
{{- end}}
</ul>{{end}}
`
