// Package lexicon loads the medical dictionaries and recognizes their terms in text.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

const (
	denyFile    = "deny.txt"
	synonymFile = "synonym.txt"
)

// builtinDeny markers are always treated as negation, whatever deny.txt holds
var builtinDeny = []string{"不适合", "不能", "忌"}

// Store is the read-only term table. Build it once and share it.
type Store struct {
	types     map[string]model.TypeSet
	deny      []string
	canonical map[string]string // alias -> canonical term
}

// NewStore builds a store from in-memory word lists.
// Each synonym group lists the canonical term first.
func NewStore(words map[model.EntityType][]string, deny []string, synonyms [][]string) *Store {
	s := &Store{
		types:     make(map[string]model.TypeSet),
		canonical: make(map[string]string),
	}

	for typ, list := range words {
		for _, w := range list {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			s.types[w] = s.types[w].With(typ)
		}
	}

	for _, w := range deny {
		if w = strings.TrimSpace(w); w != "" && !contains(s.deny, w) {
			s.deny = append(s.deny, w)
		}
	}
	for _, w := range builtinDeny {
		if !contains(s.deny, w) {
			s.deny = append(s.deny, w)
		}
	}

	for _, group := range synonyms {
		s.addSynonyms(group)
	}

	return s
}

func (s *Store) addSynonyms(group []string) {
	var parts []string
	for _, p := range group {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return
	}
	standard := parts[0]
	for _, alias := range parts[1:] {
		if alias != standard {
			s.canonical[alias] = standard
		}
	}
}

// Load reads the dictionaries from fsys: one <type>.txt per entity type,
// plus optional deny.txt and synonym.txt
func Load(fsys fs.FS) (*Store, error) {
	words := make(map[model.EntityType][]string)
	for _, typ := range model.AllEntityTypes() {
		name := typ.String() + ".txt"
		lines, err := readLines(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		words[typ] = lines
	}

	deny, err := readLines(fsys, denyFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", denyFile, err)
	}

	synLines, err := readLines(fsys, synonymFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", synonymFile, err)
	}
	var synonyms [][]string
	for _, line := range synLines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		synonyms = append(synonyms, strings.Split(line, "="))
	}

	return NewStore(words, deny, synonyms), nil
}

// LoadDir reads the dictionaries from a directory on disk
func LoadDir(dir string) (*Store, error) {
	return Load(os.DirFS(dir))
}

func readLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Types returns the types a term carries. Aliases inherit their canonical term's types.
func (s *Store) Types(term string) model.TypeSet {
	types := s.types[term]
	if canon, ok := s.canonical[term]; ok {
		types = types.Union(s.types[canon])
	}
	return types
}

// Has reports whether term is a dictionary word
func (s *Store) Has(term string) bool {
	_, ok := s.types[term]
	return ok
}

// Terms returns every dictionary word and alias, sorted
func (s *Store) Terms() []string {
	terms := make([]string, 0, len(s.types)+len(s.canonical))
	for t := range s.types {
		terms = append(terms, t)
	}
	for alias := range s.canonical {
		if _, ok := s.types[alias]; !ok {
			terms = append(terms, alias)
		}
	}
	sort.Strings(terms)
	return terms
}

// OfType returns the sorted dictionary words of one type
func (s *Store) OfType(t model.EntityType) []string {
	var out []string
	for term, types := range s.types {
		if types.Has(t) {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Deny returns the negation markers
func (s *Store) Deny() []string {
	return s.deny
}

// Canonical maps an alias to its canonical term
func (s *Store) Canonical(alias string) (string, bool) {
	c, ok := s.canonical[alias]
	return c, ok
}

func (s *Store) Len() int {
	return len(s.types)
}

func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}
