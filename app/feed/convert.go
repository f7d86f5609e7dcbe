package feed

// IntoBlog converts a parsed document into the canonical Blog. Entries that
// fail to convert are dropped and reported through dropped (which may be
// nil); they never fail the feed. A document left with no posts does.
func IntoBlog(doc Document, dropped DropFunc) (*Blog, error) {
	title := doc.Title()

	entries := doc.Entries()
	posts := make([]Post, 0, len(entries))
	for i, entry := range entries {
		post, err := entry.IntoPost()
		if err != nil {
			if dropped != nil {
				dropped(EntryError{Index: i, Err: err})
			}
			continue
		}
		posts = append(posts, post)
	}

	return NewBlog(title, posts)
}
