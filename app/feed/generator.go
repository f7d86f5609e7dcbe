package feed

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const defaultExcerptLength = 280

const digestTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
    <title>{{.Heading}}</title>
    <style>
      body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
      h2 { margin-top: 2rem; border-bottom: 1px solid #ddd; }
      li { margin: 0.5rem 0; }
      .meta { color: #777; font-size: 0.85rem; }
      .excerpt { color: #444; margin: 0.25rem 0 0; }
    </style>
  </head>
  <body>
    <h1>{{.Heading}}</h1>
{{- if not .Blogs}}
    <p>No new posts.</p>
{{- end}}
{{- range .Blogs}}
    <h2>{{.Title}}</h2>
    <ul>
{{- range .Posts}}
      <li>
        <a href="{{.Link}}">{{.Title}}</a>
        <span class="meta">{{.Published}}</span>
{{- if .Excerpt}}
        <p class="excerpt">{{.Excerpt}}</p>
{{- end}}
      </li>
{{- end}}
    </ul>
{{- end}}
    <p class="meta">Generated by feed-digest {{.Version}} at {{.GeneratedAt}}</p>
  </body>
</html>
`

type digestView struct {
	Heading     string
	Version     string
	GeneratedAt string
	Blogs       []digestBlog
}

type digestBlog struct {
	Title string
	Posts []digestPost
}

type digestPost struct {
	Title     string
	Link      string
	Published string
	Excerpt   string
}

type Generator struct {
	tmpl          *template.Template
	version       string
	excerptLength int
}

func NewGenerator(version string) *Generator {
	return &Generator{
		tmpl:          template.Must(template.New("digest").Parse(digestTemplate)),
		version:       version,
		excerptLength: defaultExcerptLength,
	}
}

// Run renders blogs as a standalone HTML page dated by now.
func (g *Generator) Run(blogs []Blog, now time.Time) (string, error) {
	view := digestView{
		Heading:     fmt.Sprintf("Feed Digest - %s", now.Format(time.DateOnly)),
		Version:     g.version,
		GeneratedAt: now.Format(time.RFC1123Z),
		Blogs:       make([]digestBlog, 0, len(blogs)),
	}

	for _, blog := range blogs {
		b := digestBlog{Title: blog.Title, Posts: make([]digestPost, 0, len(blog.Posts))}
		for _, post := range blog.Posts {
			b.Posts = append(b.Posts, digestPost{
				Title:     post.Title,
				Link:      post.Link,
				Published: post.PublishedAt.In(now.Location()).Format("Jan 2, 15:04"),
				Excerpt:   Excerpt(post.Description, g.excerptLength),
			})
		}
		view.Blogs = append(view.Blogs, b)
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}

	return buf.String(), nil
}
