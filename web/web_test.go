package web

import (
	"html/template"
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesExist(t *testing.T) {
	templatesFS := GetTemplatesFS()

	requiredFiles := []string{
		"index.html",
		"admin/login.html",
		"admin/layout.html",
		"admin/history.html",
	}

	for _, file := range requiredFiles {
		if _, err := fs.Stat(templatesFS, file); err != nil {
			t.Errorf("required template %q not found: %v", file, err)
		}
	}
}

func TestEmbeddedStaticFilesExist(t *testing.T) {
	staticFS := GetStaticFS()

	requiredFiles := []string{
		"css/kiosk.css",
		"js/kiosk.js",
		"js/admin.js",
	}

	for _, file := range requiredFiles {
		if _, err := fs.Stat(staticFS, file); err != nil {
			t.Errorf("required static file %q not found: %v", file, err)
		}
	}
}

func TestIndexHasKioskElements(t *testing.T) {
	content, err := fs.ReadFile(GetTemplatesFS(), "index.html")
	if err != nil {
		t.Fatalf("failed to read index.html: %v", err)
	}

	for _, id := range []string{
		"status",
		"user-display",
		"admin-status",
		"admin-button",
		"registration-form",
		"reg-uid-display",
		"database-display",
	} {
		if !strings.Contains(string(content), `id="`+id+`"`) {
			t.Errorf("index.html is missing element %q", id)
		}
	}
}

func TestAdminTemplatesParse(t *testing.T) {
	funcs := template.FuncMap{
		"outcomeLabel": func(any) string { return "" },
		"formatTime":   func(any) string { return "" },
	}
	tmpl, err := template.New("history.html").Funcs(funcs).ParseFS(GetTemplatesFS(), "admin/layout.html", "admin/history.html")
	if err != nil {
		t.Fatalf("failed to parse admin templates: %v", err)
	}
	if tmpl.Lookup("admin") == nil || tmpl.Lookup("content") == nil {
		t.Error("expected admin and content templates to be defined")
	}
}
