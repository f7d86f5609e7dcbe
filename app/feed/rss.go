package feed

import (
	"bytes"
	"time"

	"github.com/mmcdole/gofeed/rss"
)

// RSS dialect (0.9x, 1.0/RDF and 2.0). Items carry an RFC 822 pubDate; RSS 1.0
// items that only have a Dublin Core dc:date use its W3C-DTF grammar instead.
//
//	<rss><channel>
//	  <title/>
//	  <item>
//	    <title/>
//	    <link/>
//	    <description/>?
//	    <pubDate>RFC 822</pubDate>
//	  </item>
//	</channel></rss>

type RSSDialect struct{}

func (RSSDialect) Name() string {
	return "rss"
}

func (RSSDialect) Parse(data []byte) (Document, error) {
	parser := rss.Parser{}
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &RSSDocument{feed: feed}, nil
}

type RSSDocument struct {
	feed *rss.Feed
}

func (d *RSSDocument) Title() string {
	return d.feed.Title
}

func (d *RSSDocument) Entries() []Entry {
	entries := make([]Entry, 0, len(d.feed.Items))
	for _, item := range d.feed.Items {
		if item != nil {
			entries = append(entries, RSSItem{item: item})
		}
	}
	return entries
}

type RSSItem struct {
	item *rss.Item
}

func (i RSSItem) IntoPost() (Post, error) {
	if i.item.Link == "" {
		return Post{}, newParseError("item has no link")
	}

	publishedAt, err := i.publishedAt()
	if err != nil {
		return Post{}, err
	}

	return NewPost(i.item.Title, i.item.Link, i.item.Description, publishedAt), nil
}

func (i RSSItem) publishedAt() (time.Time, error) {
	if i.item.PubDate != "" {
		t, err := ParseRSSDate(i.item.PubDate)
		if err != nil {
			return time.Time{}, newDateError(err)
		}
		return t, nil
	}

	if dc := i.item.DublinCoreExt; dc != nil && len(dc.Date) > 0 {
		t, err := ParseW3CDate(dc.Date[0])
		if err != nil {
			return time.Time{}, newDateError(err)
		}
		return t, nil
	}

	return time.Time{}, &ParserError{Kind: KindDate, Message: "missing publication date"}
}
