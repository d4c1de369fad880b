package sanitizer

import (
	"strings"
	"unicode/utf8"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// MaxNameLength caps display names copied from LINE profiles.
const MaxNameLength = 100

func truncate(limit int) Strategy {
	return func(s string) string {
		if utf8.RuneCountInString(s) <= limit {
			return s
		}
		return string([]rune(s)[:limit])
	}
}

func SanitizeDisplayName(input string) string {
	p := Pipeline{
		TrimAndNormalize,
		truncate(MaxNameLength),
		strings.TrimSpace,
	}
	return p.Apply(input)
}

func SanitizeNote(input string) string {
	return strings.TrimSpace(input)
}

// TrimIDs trims every identifier, keeping order and duplicates.
func TrimIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.TrimSpace(id)
	}
	return out
}
