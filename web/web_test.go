package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesExist(t *testing.T) {
	data, err := fs.ReadFile(GetTemplatesFS(), "index.html")
	if err != nil {
		t.Fatalf("index template not found: %v", err)
	}
	for _, want := range []string{"{{.Title}}", "{{.SeasonID}}", "/static/js/game.js"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("index template missing %q", want)
		}
	}
}

func TestEmbeddedStaticFilesExist(t *testing.T) {
	staticFS := GetStaticFS()

	requiredFiles := []string{
		"css/game.css",
		"js/game.js",
	}

	for _, file := range requiredFiles {
		if _, err := fs.Stat(staticFS, file); err != nil {
			t.Errorf("required static file %q not found: %v", file, err)
		}
	}
}
