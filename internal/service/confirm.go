package service

import "skybridge/internal/utils"

// DefaultConfirmWords are always accepted as confirmation, in English and Swedish
var DefaultConfirmWords = []string{
	"yes", "y", "confirm", "looks good", "go ahead", "submit", "ok",
	"ja", "bekrafta", "bekräfta",
}

// ConfirmationMatcher recognises a whole message as an affirmative answer
type ConfirmationMatcher struct {
	words map[string]struct{}
}

// NewConfirmationMatcher accepts the default words plus any extras
func NewConfirmationMatcher(extra ...string) *ConfirmationMatcher {
	m := &ConfirmationMatcher{words: make(map[string]struct{}, len(DefaultConfirmWords)+len(extra))}
	for _, w := range DefaultConfirmWords {
		m.add(w)
	}
	for _, w := range extra {
		m.add(w)
	}
	return m
}

func (m *ConfirmationMatcher) add(word string) {
	if f := utils.FoldTrim(word); f != "" {
		m.words[f] = struct{}{}
	}
}

// Matches reports whether the entire message, ignoring case and surrounding
// whitespace, is one of the confirmation words.
func (m *ConfirmationMatcher) Matches(message string) bool {
	_, ok := m.words[utils.FoldTrim(message)]
	return ok
}
