package sources

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads sources from path and appends the inline URLs. A .yml/.yaml
// file holds a list under "feeds"; any other file is plain text with one
// URL per line and "#" starting a comment. Duplicate URLs keep their first
// position.
func Load(path string, inline []string) ([]Source, error) {
	var loaded []Source

	if path != "" {
		fromFile, err := loadFile(path)
		switch {
		case err == nil:
			loaded = append(loaded, fromFile...)
		case errors.Is(err, os.ErrNotExist) && len(inline) > 0:
			slog.Debug("Sources file not found, using inline sources only", "path", path)
		default:
			return nil, err
		}
	}

	for _, raw := range inline {
		if u := strings.TrimSpace(raw); u != "" {
			loaded = append(loaded, Source{URL: u})
		}
	}

	result := make([]Source, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for i, source := range loaded {
		if err := validateURL(source.URL); err != nil {
			return nil, fmt.Errorf("invalid source at position %d: %w", i+1, err)
		}
		if seen[source.URL] {
			continue
		}
		seen[source.URL] = true
		result = append(result, source)
	}

	return result, nil
}

func loadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return parseYAML(data)
	default:
		return parseLines(data)
	}
}

func parseYAML(data []byte) ([]Source, error) {
	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range file.Feeds {
		file.Feeds[i].URL = strings.TrimSpace(file.Feeds[i].URL)
		if file.Feeds[i].URL == "" {
			return nil, fmt.Errorf("feed at index %d: url is required", i)
		}
	}

	return file.Feeds, nil
}

func parseLines(data []byte) ([]Source, error) {
	var result []Source

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result = append(result, Source{URL: line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources: %w", err)
	}

	return result, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: host is required", raw)
	}
	return nil
}
