package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityType is the closed set of knowledge-graph node kinds a lexicon term can name
type EntityType uint8

const (
	Disease EntityType = iota
	Department
	Check
	Drug
	Food
	Symptom
	Producer

	numEntityTypes
)

var entityTypeNames = [numEntityTypes]string{
	Disease:    "disease",
	Department: "department",
	Check:      "check",
	Drug:       "drug",
	Food:       "food",
	Symptom:    "symptom",
	Producer:   "producer",
}

// AllEntityTypes returns every entity type in canonical order
func AllEntityTypes() []EntityType {
	types := make([]EntityType, 0, numEntityTypes)
	for t := EntityType(0); t < numEntityTypes; t++ {
		types = append(types, t)
	}
	return types
}

func (t EntityType) String() string {
	if t < numEntityTypes {
		return entityTypeNames[t]
	}
	return fmt.Sprintf("EntityType(%d)", t)
}

// ParseEntityType maps a lexicon name such as "disease" to its EntityType
func ParseEntityType(s string) (EntityType, error) {
	for i, name := range entityTypeNames {
		if strings.EqualFold(s, name) {
			return EntityType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity type %q", s)
}

// TypeSet is an immutable set of entity types
type TypeSet uint8

// NewTypeSet builds a set from the given types
func NewTypeSet(types ...EntityType) TypeSet {
	var s TypeSet
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// With returns a copy of s that also contains t
func (s TypeSet) With(t EntityType) TypeSet {
	return s | 1<<t
}

// Union returns the set of types present in either s or o
func (s TypeSet) Union(o TypeSet) TypeSet {
	return s | o
}

func (s TypeSet) Has(t EntityType) bool {
	return s&(1<<t) != 0
}

func (s TypeSet) Empty() bool {
	return s == 0
}

func (s TypeSet) Len() int {
	n := 0
	for t := EntityType(0); t < numEntityTypes; t++ {
		if s.Has(t) {
			n++
		}
	}
	return n
}

// List returns the members in canonical order
func (s TypeSet) List() []EntityType {
	var types []EntityType
	for t := EntityType(0); t < numEntityTypes; t++ {
		if s.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

func (s TypeSet) Strings() []string {
	list := s.List()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.String()
	}
	return names
}

func (s TypeSet) String() string {
	return "[" + strings.Join(s.Strings(), ",") + "]"
}

// MarshalJSON encodes the set as a list of type names
func (s TypeSet) MarshalJSON() ([]byte, error) {
	names := s.Strings()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of type names
func (s *TypeSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set TypeSet
	for _, name := range names {
		t, err := ParseEntityType(name)
		if err != nil {
			return err
		}
		set = set.With(t)
	}
	*s = set
	return nil
}

// Entity is a domain term recognized in a question together with its candidate types
type Entity struct {
	Text  string  `json:"text"`
	Types TypeSet `json:"types"`
}

// Entities is keyed by text and ordered by first occurrence in the question
type Entities []Entity

// Index returns the position of text, or -1
func (e Entities) Index(text string) int {
	for i, ent := range e {
		if ent.Text == text {
			return i
		}
	}
	return -1
}

func (e Entities) Get(text string) (Entity, bool) {
	if i := e.Index(text); i >= 0 {
		return e[i], true
	}
	return Entity{}, false
}

// OfType returns the texts of entities carrying t, in order
func (e Entities) OfType(t EntityType) []string {
	var out []string
	for _, ent := range e {
		if ent.Types.Has(t) {
			out = append(out, ent.Text)
		}
	}
	return out
}

// Types returns the union of all entity type sets
func (e Entities) Types() TypeSet {
	var s TypeSet
	for _, ent := range e {
		s = s.Union(ent.Types)
	}
	return s
}

func (e Entities) Texts() []string {
	out := make([]string, len(e))
	for i, ent := range e {
		out[i] = ent.Text
	}
	return out
}

// Merge adds ent or unions its types into the existing entry with the same text
func (e Entities) Merge(ent Entity) Entities {
	if ent.Types.Empty() {
		return e
	}
	if i := e.Index(ent.Text); i >= 0 {
		e[i].Types = e[i].Types.Union(ent.Types)
		return e
	}
	return append(e, ent)
}
