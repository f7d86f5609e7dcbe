package feed

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
)

type Parser struct {
	dialects []Dialect
	logger   *slog.Logger
}

type Option func(*Parser)

// WithDialects replaces the registry. Dialects are tried in the given order.
func WithDialects(dialects ...Dialect) Option {
	return func(p *Parser) {
		p.dialects = dialects
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		dialects: []Dialect{AtomDialect{}, RSSDialect{}},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Dialects() []string {
	names := make([]string, 0, len(p.dialects))
	for _, dialect := range p.dialects {
		names = append(names, dialect.Name())
	}
	return names
}

// Run deserializes data with the first dialect that accepts it and converts
// the result. A conversion failure is final: later dialects are not tried
// once one has matched the document.
func (p *Parser) Run(data []byte) (*Blog, error) {
	return p.RunWithDropped(data, nil)
}

// RunWithDropped is Run with an extra callback for every entry dropped during
// conversion. Dropped entries are logged either way.
func (p *Parser) RunWithDropped(data []byte, dropped DropFunc) (*Blog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newDeserializeError("empty document", nil)
	}

	var errs []error
	for _, dialect := range p.dialects {
		doc, err := dialect.Parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dialect.Name(), err))
			continue
		}

		return IntoBlog(doc, func(e EntryError) {
			p.logger.Debug("Entry dropped",
				"dialect", dialect.Name(),
				"feed", doc.Title(),
				"index", e.Index,
				"error", e.Err)
			if dropped != nil {
				dropped(e)
			}
		})
	}

	return nil, newDeserializeError("no known feed dialect matched", errors.Join(errs...))
}
