package feed

import (
	"time"
)

// Canonical model shared by every feed dialect

type Post struct {
	Title       string
	Link        string
	Description string
	PublishedAt time.Time // always UTC
}

type Blog struct {
	Title         string
	LastBuildDate time.Time // max PublishedAt over Posts
	Posts         []Post    // source document order
}

func NewPost(title, link, description string, publishedAt time.Time) Post {
	return Post{
		Title:       title,
		Link:        link,
		Description: description,
		PublishedAt: publishedAt.UTC(),
	}
}

// NewBlog is the only way a Blog comes into existence: it refuses an empty
// post list and derives LastBuildDate from the posts it is given.
func NewBlog(title string, posts []Post) (*Blog, error) {
	if len(posts) == 0 {
		return nil, newParseError("Empty feed: " + title)
	}

	lastBuildDate := posts[0].PublishedAt
	for _, post := range posts[1:] {
		if post.PublishedAt.After(lastBuildDate) {
			lastBuildDate = post.PublishedAt
		}
	}

	return &Blog{
		Title:         title,
		LastBuildDate: lastBuildDate,
		Posts:         posts,
	}, nil
}

// Conversion contracts implemented by each dialect

// Entry is one dialect-specific feed entry awaiting conversion.
type Entry interface {
	IntoPost() (Post, error)
}

// Document is one parsed dialect-specific feed document.
type Document interface {
	Title() string
	Entries() []Entry
}

// Dialect knows how to deserialize raw feed bytes into its own Document.
type Dialect interface {
	Name() string
	Parse(data []byte) (Document, error)
}

// DropFunc receives entries discarded during conversion.
type DropFunc func(EntryError)
