// Package web embeds the page templates and the static CSS and script.
package web

import "embed"

// TemplatesFS holds the full page and its htmx fragments.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.css and app.js, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
