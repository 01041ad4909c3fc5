// Package classify derives question-type tags from a question and its recognized entities.
package classify

import (
	"github.com/ppiankov/medqa/internal/model"
)

// Classifier applies keyword-trigger rules. It is safe for concurrent use.
type Classifier struct {
	triggers *Triggers
	deny     []string
}

// New creates a classifier. deny lists the negation markers used to pick food directions.
func New(triggers *Triggers, deny []string) *Classifier {
	if triggers == nil {
		triggers = DefaultTriggers()
	}
	return &Classifier{triggers: triggers, deny: deny}
}

// Classify returns the disambiguated entities and the question types that apply.
// No entities yields an empty Classification.
func (c *Classifier) Classify(question string, entities model.Entities) model.Classification {
	if len(entities) == 0 {
		return model.Classification{}
	}

	resolved := c.Disambiguate(question, entities)
	in := &input{
		question: question,
		types:    resolved.Types(),
		denied:   containsAny(question, c.deny),
		triggers: c.triggers,
	}

	var tags []model.QuestionType
	add := func(qt model.QuestionType) {
		for _, t := range tags {
			if t == qt {
				return
			}
		}
		tags = append(tags, qt)
	}

	if autoSymptomDisease(resolved) {
		add(model.SymptomDisease)
	}
	for _, r := range rules {
		if r.fires(in) {
			add(r.tag)
		}
	}

	if len(tags) == 0 {
		for _, fb := range fallbacks {
			if in.has(fb.when) {
				add(fb.tag)
				break
			}
		}
	}

	return model.Classification{Entities: resolved, QuestionTypes: tags}
}

// Disambiguate narrows terms that are both a disease and a symptom.
// A symptom trigger makes them symptoms; otherwise a cure-way trigger makes
// them diseases; otherwise both types are kept. The input is not modified.
func (c *Classifier) Disambiguate(question string, entities model.Entities) model.Entities {
	out := make(model.Entities, 0, len(entities))
	for _, ent := range entities {
		if ent.Types.Has(model.Disease) && ent.Types.Has(model.Symptom) {
			switch {
			case containsAny(question, c.triggers.Symptom):
				ent.Types = model.NewTypeSet(model.Symptom)
			case containsAny(question, c.triggers.Cureway):
				ent.Types = model.NewTypeSet(model.Disease)
			}
		}
		out = append(out, ent)
	}
	return out
}

// autoSymptomDisease reports two or more symptoms and nothing else
func autoSymptomDisease(entities model.Entities) bool {
	symptoms := 0
	for _, ent := range entities {
		for _, t := range ent.Types.List() {
			if t != model.Symptom {
				return false
			}
		}
		symptoms++
	}
	return symptoms >= 2
}
