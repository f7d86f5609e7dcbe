package sources

// Source is one feed URL to include in the digest.
type Source struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"` // optional label, used in logs and run history
}

type sourceFile struct {
	Feeds []Source `yaml:"feeds"`
}

// Label returns the name when one is configured, otherwise the URL.
func (s Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}
