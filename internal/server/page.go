package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/pulse-chat/pulse/internal/constants"
)

//go:embed web/index.html
var webFS embed.FS

// Page holds the texts shown around the browser widget.
type Page struct {
	Title       string
	Subtitle    string
	Placeholder string
	Disclaimer  string
}

func (p Page) withDefaults() Page {
	if p.Title == "" {
		p.Title = constants.DefaultAssistantTitle
	}
	if p.Subtitle == "" {
		p.Subtitle = constants.DefaultAssistantSubtitle
	}
	if p.Placeholder == "" {
		p.Placeholder = constants.DefaultPlaceholder
	}
	if p.Disclaimer == "" {
		p.Disclaimer = constants.Disclaimer
	}
	return p
}

// renderPage executes the widget template once; the result is served as is.
func renderPage(p Page) ([]byte, error) {
	tmpl, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse widget page: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p.withDefaults()); err != nil {
		return nil, fmt.Errorf("failed to render widget page: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(s.page)
}
