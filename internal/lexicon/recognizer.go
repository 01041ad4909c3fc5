package lexicon

import (
	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/ppiankov/medqa/internal/model"
)

// Recognizer finds every dictionary term in a text with one automaton pass
type Recognizer struct {
	store *Store
	trie  *ahocorasick.Trie
}

// NewRecognizer builds the automaton over all terms and aliases in store
func NewRecognizer(store *Store) *Recognizer {
	r := &Recognizer{store: store}
	if terms := store.Terms(); len(terms) > 0 {
		r.trie = ahocorasick.NewTrieBuilder().AddStrings(terms).Build()
	}
	return r
}

// Recognize returns each distinct matched surface form with all of its types,
// in order of first match. Overlapping terms are all reported.
func (r *Recognizer) Recognize(text string) model.Entities {
	if text == "" || r.trie == nil {
		return nil
	}

	var out model.Entities
	for _, m := range r.trie.MatchString(text) {
		word := m.MatchString()
		if out.Index(word) >= 0 {
			continue
		}
		out = out.Merge(model.Entity{Text: word, Types: r.store.Types(word)})
	}
	return out
}
