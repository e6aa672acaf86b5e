package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ScrubControl strips control characters and invalid UTF-8 from a string.
// Committer names and keywords arrive from uncontrolled upstream data and
// occasionally carry both.
func ScrubControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// BoundedSet accumulates distinct strings up to a fixed capacity, preserving
// insertion order. Accumulated contributor lists grow without bound
// otherwise: a busy committer keeps collecting categories over years of
// reviewed projects.
type BoundedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

// NewBoundedSet returns a set with the given capacity, pre-seeded with the
// initial values. Seeding past the capacity keeps the first limit entries.
func NewBoundedSet(limit int, initial ...string) *BoundedSet {
	s := &BoundedSet{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
	}
	for _, v := range initial {
		s.Add(v)
	}
	return s
}

// Add inserts a scrubbed, trimmed value. It reports whether the value was
// stored; blanks, duplicates and values past the capacity are not.
func (s *BoundedSet) Add(v string) bool {
	v = strings.TrimSpace(ScrubControl(v))
	if v == "" {
		return false
	}
	if _, dup := s.seen[v]; dup {
		return false
	}
	if len(s.items) >= s.limit {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Items returns the stored values in insertion order.
func (s *BoundedSet) Items() []string {
	return s.items
}

// Len returns the number of stored values.
func (s *BoundedSet) Len() int {
	return len(s.items)
}
