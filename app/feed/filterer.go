package feed

import (
	"time"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run keeps the blogs updated within the last days days, each trimmed to its
// recent posts. Blog order and post order are preserved.
func (f *Filterer) Run(blogs []Blog, days int, now time.Time) []Blog {
	filtered := make([]Blog, 0, len(blogs))
	for _, blog := range blogs {
		if !f.withinDays(days, blog.LastBuildDate, now) {
			continue
		}

		recent := make([]Post, 0, len(blog.Posts))
		for _, post := range blog.Posts {
			if f.withinDays(days, post.PublishedAt, now) {
				recent = append(recent, post)
			}
		}

		trimmed, err := NewBlog(blog.Title, recent)
		if err != nil {
			continue
		}
		filtered = append(filtered, *trimmed)
	}

	return filtered
}

// withinDays counts whole elapsed days, so anything less than days+1 days old
// passes. Timestamps in the future always pass.
func (f *Filterer) withinDays(days int, date, now time.Time) bool {
	elapsed := now.Sub(date)
	return int64(elapsed/(24*time.Hour)) <= int64(days)
}
