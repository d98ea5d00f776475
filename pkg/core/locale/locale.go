// Package locale holds the user's language preference and formats amounts
// for it.
package locale

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Supported lists the languages the app ships strings for; the first entry
// is the fallback
var Supported = []language.Tag{
	language.English,
	language.MustParse("so"),
	language.Arabic,
}

var matcher = language.NewMatcher(Supported)

// Store is the language preference for the current user
type Store struct {
	mu      sync.RWMutex
	tag     language.Tag
	printer *message.Printer
}

// New creates a store for the preferred language, falling back to English
// when the preference is empty or unsupported
func New(preference string) *Store {
	s := &Store{}
	if _, err := s.Set(preference); err != nil {
		s.setTag(Supported[0])
	}
	return s
}

// Set changes the preference and returns the supported tag it matched.
// An unparseable preference leaves the store unchanged.
func (s *Store) Set(preference string) (language.Tag, error) {
	if preference == "" {
		s.setTag(Supported[0])
		return Supported[0], nil
	}

	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return language.Und, fmt.Errorf("invalid language %q", preference)
	}

	_, index, confidence := matcher.Match(tags...)
	tag := Supported[index]
	if confidence == language.No {
		tag = Supported[0]
	}
	s.setTag(tag)
	return tag, nil
}

func (s *Store) setTag(tag language.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tag
	s.printer = message.NewPrinter(tag)
}

// Tag returns the active language
func (s *Store) Tag() language.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tag
}

// FormatAmount renders a money amount with two decimals and the locale's
// digit grouping
func (s *Store) FormatAmount(v float64) string {
	s.mu.RLock()
	p := s.printer
	s.mu.RUnlock()
	return p.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Sprintf formats with the locale's printer
func (s *Store) Sprintf(format string, args ...any) string {
	s.mu.RLock()
	p := s.printer
	s.mu.RUnlock()
	return p.Sprintf(format, args...)
}
