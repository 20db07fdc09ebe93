package shared

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLocale parses an IETF BCP 47 tag and returns its canonical form (e.g. "en-us" -> "en-US").
func NormalizeLocale(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty tag", ErrInvalidLocale)
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidLocale, raw, err)
	}
	if tag == language.Und {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocale, raw)
	}
	return tag.String(), nil
}

// NormalizeLocales canonicalizes every tag and drops duplicates, keeping first-seen order.
func NormalizeLocales(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	locales := make([]string, 0, len(raw))
	for _, r := range raw {
		l, err := NormalizeLocale(r)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		locales = append(locales, l)
	}
	return locales, nil
}
