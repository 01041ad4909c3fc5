package classify

import (
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// input is what every rule sees: the question text and the entity types present
type input struct {
	question string
	types    model.TypeSet
	denied   bool
	triggers *Triggers
}

func (in *input) hit(words ...[]string) bool {
	return containsAny(in.question, words...)
}

func (in *input) has(t model.EntityType) bool {
	return in.types.Has(t)
}

type rule struct {
	tag   model.QuestionType
	fires func(in *input) bool
}

// rules are evaluated in order and each may add its tag once.
// Order is the output order.
var rules = []rule{
	{model.SymptomDisease, func(in *input) bool { return in.hit(in.triggers.Symptom) && in.has(model.Symptom) }},
	{model.DiseaseSymptom, func(in *input) bool { return in.hit(in.triggers.Symptom) && in.has(model.Disease) }},
	{model.DrugDisease, func(in *input) bool { return in.has(model.Drug) && in.hit(in.triggers.DrugDisease) }},
	{model.DrugProducer, func(in *input) bool { return in.has(model.Drug) && in.hit(in.triggers.Producer) }},
	{model.DiseaseCause, func(in *input) bool { return in.hit(in.triggers.Cause) && in.has(model.Disease) }},
	{model.DiseaseAcompany, func(in *input) bool { return in.hit(in.triggers.Acompany) && in.has(model.Disease) }},
	{model.DiseaseNotFood, func(in *input) bool { return in.hit(in.triggers.Food) && in.has(model.Disease) && in.denied }},
	{model.DiseaseDoFood, func(in *input) bool { return in.hit(in.triggers.Food) && in.has(model.Disease) && !in.denied }},
	{model.FoodNotDisease, func(in *input) bool { return in.has(model.Food) && in.denied }},
	{model.FoodDoDisease, func(in *input) bool {
		return in.has(model.Food) && !in.denied && in.hit(in.triggers.Cure, in.triggers.Food)
	}},
	{model.DiseaseDrug, func(in *input) bool { return in.hit(in.triggers.Drug) && in.has(model.Disease) }},
	{model.DrugDisease, func(in *input) bool { return in.hit(in.triggers.Cure) && in.has(model.Drug) }},
	{model.DiseaseCheck, func(in *input) bool { return in.hit(in.triggers.Check) && in.has(model.Disease) }},
	{model.CheckDisease, func(in *input) bool { return in.hit(in.triggers.Check, in.triggers.Cure) && in.has(model.Check) }},
	{model.DiseasePrevent, func(in *input) bool { return in.hit(in.triggers.Prevent) && in.has(model.Disease) }},
	{model.DiseaseLasttime, func(in *input) bool { return in.hit(in.triggers.Lasttime) && in.has(model.Disease) }},
	{model.DiseaseCureway, func(in *input) bool { return in.hit(in.triggers.Cureway) && in.has(model.Disease) }},
	{model.DiseaseCureprob, func(in *input) bool { return in.hit(in.triggers.Cureprob) && in.has(model.Disease) }},
	{model.DiseaseEasyget, func(in *input) bool { return in.hit(in.triggers.Easyget) && in.has(model.Disease) }},
	{model.DiseaseDepartment, func(in *input) bool { return in.hit(in.triggers.Belong) && in.has(model.Disease) }},

	// Symptom-only treatment questions
	{model.SymptomCureway, func(in *input) bool {
		return in.hit(in.triggers.Cureway) && in.has(model.Symptom) && !in.has(model.Disease)
	}},
	{model.SymptomDrug, func(in *input) bool {
		return in.hit(in.triggers.Drug) && in.has(model.Symptom) && !in.has(model.Disease)
	}},
}

// fallbacks apply, first match only, when no rule fired
var fallbacks = []struct {
	when model.EntityType
	tag  model.QuestionType
}{
	{model.Disease, model.DiseaseDesc},
	{model.Symptom, model.SymptomDisease},
	{model.Drug, model.DrugDesc},
}

func containsAny(text string, lists ...[]string) bool {
	for _, words := range lists {
		for _, w := range words {
			if w != "" && strings.Contains(text, w) {
				return true
			}
		}
	}
	return false
}
