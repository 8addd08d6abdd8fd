package domain

import (
	"fmt"
	"strings"
)

// Category is a forum board classification. The set is closed.
type Category string

const (
	CategoryPatchNote Category = "patch note"
	CategoryNotice    Category = "notice"
	CategoryEvent     Category = "event"
)

// Categories lists every category in poll order.
var Categories = []Category{CategoryPatchNote, CategoryNotice, CategoryEvent}

// ParseCategory validates a raw category label (case-insensitive).
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Title returns the category in title case ("Patch Note").
func (c Category) Title() string {
	words := strings.Fields(string(c))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Slug returns a key-safe form of the category ("patch-note").
func (c Category) Slug() string {
	return strings.ReplaceAll(string(c), " ", "-")
}
