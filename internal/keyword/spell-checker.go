package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Suggestion is a dictionary term offered in place of a misspelled one.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
}

type dictEntry struct {
	term  string
	runes int
	freq  int
}

// SpellChecker proposes corrections from the terms of an index. Closer terms
// win; among equally close terms the more frequent one wins.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	once    sync.Once
	entries []dictEntry
	known   map[string]struct{}
	loadErr error
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency drops dictionary terms seen in fewer documents.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps suggestions per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker. The dictionary is read on first use.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load snapshots the dictionary once, keeping only terms frequent enough to suggest.
func (s *SpellChecker) load() error {
	s.once.Do(func() {
		terms, err := s.dictionary.GetAllTerms()
		if err != nil {
			s.loadErr = err
			return
		}
		s.known = make(map[string]struct{}, len(terms))
		for _, t := range terms {
			lower := strings.ToLower(t)
			s.known[lower] = struct{}{}
			freq, err := s.dictionary.GetTermFrequency(t)
			if err != nil || freq < s.minFreq {
				continue
			}
			s.entries = append(s.entries, dictEntry{term: t, runes: utf8.RuneCountInString(lower), freq: freq})
		}
	})
	return s.loadErr
}

// Suggest returns dictionary terms within the edit distance of term, best first.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	if err := s.load(); err != nil {
		return nil
	}
	lower := strings.ToLower(term)
	n := utf8.RuneCountInString(lower)

	out := make([]Suggestion, 0)
	for _, e := range s.entries {
		if e.runes-n > s.maxDistance || n-e.runes > s.maxDistance {
			continue
		}
		candidate := strings.ToLower(e.term)
		if candidate == lower {
			continue
		}
		if d := LevenshteinDistance(lower, candidate); d <= s.maxDistance {
			out = append(out, Suggestion{Term: e.term, Distance: d, Frequency: e.freq})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Term < b.Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// IsMisspelled reports whether term is absent from the dictionary. An
// unreadable dictionary treats every term as known.
func (s *SpellChecker) IsMisspelled(term string) bool {
	if err := s.load(); err != nil {
		return false
	}
	_, ok := s.known[strings.ToLower(term)]
	return !ok
}

// GetSuggestedQuery replaces each misspelled term of query with its best
// suggestion. It returns query unchanged when nothing was corrected.
func (s *SpellChecker) GetSuggestedQuery(query string) string {
	terms := tokenizeQuery(query)
	changed := false
	for i, term := range terms {
		if !s.IsMisspelled(term) {
			continue
		}
		if best := s.Suggest(term); len(best) > 0 {
			terms[i] = best[0].Term
			changed = true
		}
	}
	if !changed {
		return query
	}
	return strings.Join(terms, " ")
}
