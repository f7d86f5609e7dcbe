package feed

import (
	"bytes"

	"github.com/mmcdole/gofeed/atom"
)

// Atom (RFC 4287) dialect. Only the subset needed for a digest is read:
//
//	<feed>
//	  <title/>
//	  <entry>
//	    <title/>
//	    <link href=""/>
//	    <updated>RFC 3339</updated>
//	    <summary/>?
//	  </entry>
//	</feed>

type AtomDialect struct{}

func (AtomDialect) Name() string {
	return "atom"
}

func (AtomDialect) Parse(data []byte) (Document, error) {
	parser := atom.Parser{}
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &AtomDocument{feed: feed}, nil
}

type AtomDocument struct {
	feed *atom.Feed
}

func (d *AtomDocument) Title() string {
	return d.feed.Title
}

func (d *AtomDocument) Entries() []Entry {
	entries := make([]Entry, 0, len(d.feed.Entries))
	for _, entry := range d.feed.Entries {
		if entry != nil {
			entries = append(entries, AtomEntry{entry: entry})
		}
	}
	return entries
}

type AtomEntry struct {
	entry *atom.Entry
}

// IntoPost uses the first declared link regardless of its rel attribute.
func (e AtomEntry) IntoPost() (Post, error) {
	if len(e.entry.Links) == 0 || e.entry.Links[0] == nil || e.entry.Links[0].Href == "" {
		return Post{}, newParseError("entry has no link")
	}

	publishedAt, err := ParseAtomDate(e.entry.Updated)
	if err != nil {
		return Post{}, newDateError(err)
	}

	return NewPost(e.entry.Title, e.entry.Links[0].Href, e.entry.Summary, publishedAt), nil
}
