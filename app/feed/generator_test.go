package feed

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateDigest(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	generator := NewGenerator("test-version")

	blogs := []Blog{
		mustBlog(t, "Test Feed",
			NewPost("Test Item 1", "https://example.com/item1", "<p>Hello <b>world</b></p>", now.Add(-time.Hour)),
			NewPost("Test Item 2", "https://example.com/item2", "", now.Add(-2*time.Hour)),
		),
		mustBlog(t, "Second Feed",
			NewPost("Other", "https://example.org/other", "", now.Add(-3*time.Hour)),
		),
	}

	html, err := generator.Run(blogs, now)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expectedElements := []string{
		"<!DOCTYPE html>",
		"<h1>Feed Digest - 2024-01-10</h1>",
		"<h2>Test Feed</h2>",
		"<h2>Second Feed</h2>",
		`<a href="https://example.com/item1">Test Item 1</a>`,
		`<a href="https://example.org/other">Other</a>`,
		`<p class="excerpt">Hello world</p>`,
		"test-version",
	}

	for _, expected := range expectedElements {
		if !strings.Contains(html, expected) {
			t.Errorf("Expected digest to contain %q", expected)
		}
	}

	if strings.Index(html, "Test Feed") > strings.Index(html, "Second Feed") {
		t.Error("Expected blogs to keep their order")
	}
	if strings.Count(html, `class="excerpt"`) != 1 {
		t.Errorf("Expected exactly one excerpt, got %d", strings.Count(html, `class="excerpt"`))
	}
}

func TestGenerateDigestEscapes(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	blogs := []Blog{
		mustBlog(t, "<script>alert(1)</script>",
			NewPost("Tom & Jerry", "javascript:alert(1)", "", now),
		),
	}

	html, err := NewGenerator("dev").Run(blogs, now)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("Expected blog title to be escaped")
	}
	if !strings.Contains(html, "Tom &amp; Jerry") {
		t.Error("Expected post title to be escaped")
	}
	if strings.Contains(html, `href="javascript:`) {
		t.Error("Expected unsafe link to be neutralized")
	}
}

func TestGenerateEmptyDigest(t *testing.T) {
	html, err := NewGenerator("dev").Run(nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "No new posts.") {
		t.Error("Expected empty digest notice")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		content  string
		limit    int
		expected string
	}{
		{"", 10, ""},
		{"plain text", 0, "plain text"},
		{"<p>Hello   <em>there</em>\n friend</p>", 100, "Hello there friend"},
		{"<style>p{}</style><p>Body</p><script>x()</script>", 100, "Body"},
		{"abcdefghij klm", 10, "abcdefghij…"},
		{"héllo wörld", 5, "héllo…"},
	}

	for _, tt := range tests {
		if got := Excerpt(tt.content, tt.limit); got != tt.expected {
			t.Errorf("Excerpt(%q, %d) = %q, expected %q", tt.content, tt.limit, got, tt.expected)
		}
	}
}
