package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/medqa/internal/model"
)

// Normalizer rewrites synonym aliases to canonical terms
type Normalizer struct {
	store    *Store
	replacer *strings.Replacer
}

// NewNormalizer prepares a longest-alias-first substitution over store's synonyms
func NewNormalizer(store *Store) *Normalizer {
	aliases := make([]string, 0, len(store.canonical))
	for alias := range store.canonical {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(aliases[i]), utf8.RuneCountInString(aliases[j])
		if li != lj {
			return li > lj
		}
		return aliases[i] < aliases[j]
	})

	pairs := make([]string, 0, 2*len(aliases))
	for _, alias := range aliases {
		pairs = append(pairs, alias, store.canonical[alias])
	}

	return &Normalizer{store: store, replacer: strings.NewReplacer(pairs...)}
}

// Normalize replaces every alias in text with its canonical term
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return text
	}
	return n.replacer.Replace(text)
}

// Canonicalize maps alias entities onto their canonical terms,
// merging duplicates in first-occurrence order
func (n *Normalizer) Canonicalize(entities model.Entities) model.Entities {
	var out model.Entities
	for _, ent := range entities {
		if canon, ok := n.store.Canonical(ent.Text); ok {
			ent = model.Entity{Text: canon, Types: n.store.Types(canon).Union(ent.Types)}
		}
		out = out.Merge(ent)
	}
	return out
}
