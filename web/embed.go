// Package web holds the HTML templates and static assets served by the
// dashboard.
package web

import "embed"

// TemplatesFS holds every page and partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
