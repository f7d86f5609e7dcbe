package feed

import (
	"strings"
	"time"
)

const (
	GrammarRFC3339 = "RFC 3339"
	GrammarRFC822  = "RFC 822"
	GrammarW3CDTF  = "W3C-DTF"
)

// Each dialect owns exactly one date grammar. Parsing never falls back to
// another dialect's grammar, so "01/02" style ambiguities cannot be guessed.

var rfc822Layouts = buildRFC822Layouts()

var w3cLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Zone names RFC 822 section 5.1 allows besides numeric offsets.
var rfc822Zones = map[string]string{
	"UT":  "+0000",
	"UTC": "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

func buildRFC822Layouts() []string {
	var layouts []string
	for _, weekday := range []string{"Mon, ", ""} {
		for _, year := range []string{"2006", "06"} {
			for _, clock := range []string{"15:04:05", "15:04"} {
				layouts = append(layouts, weekday+"2 Jan "+year+" "+clock+" -0700")
			}
		}
	}
	return layouts
}

// ParseAtomDate parses an Atom date construct (RFC 3339 date-time).
func ParseAtomDate(value string) (time.Time, error) {
	return parseWithLayouts(GrammarRFC3339, strings.TrimSpace(value), time.RFC3339)
}

// ParseRSSDate parses an RSS 2.0 pubDate, which follows RFC 822 with the
// four-digit year RSS recommends (two-digit years are still accepted).
func ParseRSSDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if i := strings.LastIndexByte(value, ' '); i >= 0 {
		if offset, ok := rfc822Zones[strings.ToUpper(value[i+1:])]; ok {
			value = value[:i+1] + offset
		}
	}
	return parseWithLayouts(GrammarRFC822, value, rfc822Layouts...)
}

// ParseW3CDate parses the W3C-DTF profile of ISO 8601 used by dc:date.
func ParseW3CDate(value string) (time.Time, error) {
	return parseWithLayouts(GrammarW3CDTF, strings.TrimSpace(value), w3cLayouts...)
}

func parseWithLayouts(grammar, value string, layouts ...string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &DateParseError{Grammar: grammar, Value: value, Message: "empty timestamp"}
	}

	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, &DateParseError{Grammar: grammar, Value: value, Message: firstErr.Error()}
}
