package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTextFile(t *testing.T) {
	path := writeFile(t, "feeds.txt", `# Blogs I follow
https://example.com/feed.xml
   https://example.org/atom.xml   # trailing comment

https://example.com/feed.xml
#https://disabled.example.com/rss
`)

	sources, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d: %v", len(sources), sources)
	}
	if sources[0].URL != "https://example.com/feed.xml" {
		t.Errorf("Expected first source 'https://example.com/feed.xml', got '%s'", sources[0].URL)
	}
	if sources[1].URL != "https://example.org/atom.xml" {
		t.Errorf("Expected second source 'https://example.org/atom.xml', got '%s'", sources[1].URL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "feeds.yml", `
feeds:
  - url: "https://example.com/feed.xml"
    name: "Example"
  - url: "https://example.org/atom.xml"
`)

	sources, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "Example" {
		t.Errorf("Expected name 'Example', got '%s'", sources[0].Name)
	}
	if sources[0].Label() != "Example" {
		t.Errorf("Expected label 'Example', got '%s'", sources[0].Label())
	}
	if sources[1].Label() != "https://example.org/atom.xml" {
		t.Errorf("Expected label to fall back to URL, got '%s'", sources[1].Label())
	}
}

func TestLoadYAMLMissingURL(t *testing.T) {
	path := writeFile(t, "feeds.yaml", `
feeds:
  - name: "No URL"
`)

	if _, err := Load(path, nil); err == nil {
		t.Error("Expected error for feed without url")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "feeds.yml", "feeds: [unclosed")

	if _, err := Load(path, nil); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadInlineAppendedAndDeduplicated(t *testing.T) {
	path := writeFile(t, "feeds.txt", "https://example.com/feed.xml\n")

	sources, err := Load(path, []string{" https://example.net/rss ", "https://example.com/feed.xml", ""})
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[1].URL != "https://example.net/rss" {
		t.Errorf("Expected inline source to be appended, got '%s'", sources[1].URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "feeds.txt")

	if _, err := Load(missing, nil); err == nil {
		t.Error("Expected error for missing file without inline sources")
	}

	sources, err := Load(missing, []string{"https://example.com/feed.xml"})
	if err != nil {
		t.Fatalf("Expected inline sources to be used, got error: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("Expected 1 source, got %d", len(sources))
	}
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/feed", "example.com/feed.xml", "https://"} {
		if _, err := Load("", []string{raw}); err == nil {
			t.Errorf("Expected error for URL %q", raw)
		}
	}
}
