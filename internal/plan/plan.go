// Package plan maps classified questions to graph query templates.
package plan

import (
	"github.com/ppiankov/medqa/internal/model"
)

// Query is one template bound to an entity. It has no behavior of its own.
type Query struct {
	Template *Template
	Entity   string
	Params   map[string]any
}

// Entry holds the queries answering one question type
type Entry struct {
	QuestionType model.QuestionType
	Queries      []Query
}

type binding struct {
	subject   model.EntityType
	templates []*Template
}

// bindings lists, per question type, the entity type it is asked about and
// the templates answering it. With several templates every entity is bound
// to the first template before any is bound to the second.
var bindings = map[model.QuestionType]binding{
	model.DiseaseSymptom:    {model.Disease, []*Template{DiseaseSymptom}},
	model.SymptomDisease:    {model.Symptom, []*Template{SymptomDisease}},
	model.DiseaseCause:      {model.Disease, []*Template{DiseaseCause}},
	model.DiseaseAcompany:   {model.Disease, []*Template{DiseaseAcompany, DiseaseAcompanyOf}},
	model.DiseaseNotFood:    {model.Disease, []*Template{DiseaseNoEat}},
	model.DiseaseDoFood:     {model.Disease, []*Template{DiseaseDoEat, DiseaseRecipe}},
	model.FoodNotDisease:    {model.Food, []*Template{FoodNoEat}},
	model.FoodDoDisease:     {model.Food, []*Template{FoodDoEat, FoodRecipe}},
	model.DiseaseDrug:       {model.Disease, []*Template{DiseaseCommonDrug, DiseaseRecDrug}},
	model.SymptomDrug:       {model.Symptom, []*Template{SymptomDrug}},
	model.DrugDisease:       {model.Drug, []*Template{DrugCommonFor, DrugRecFor}},
	model.DiseaseCheck:      {model.Disease, []*Template{DiseaseCheck}},
	model.CheckDisease:      {model.Check, []*Template{CheckDiagnoses}},
	model.DiseasePrevent:    {model.Disease, []*Template{DiseasePrevent}},
	model.DiseaseLasttime:   {model.Disease, []*Template{DiseaseLasttime}},
	model.DiseaseCureway:    {model.Disease, []*Template{DiseaseCureway}},
	model.SymptomCureway:    {model.Symptom, []*Template{SymptomCureway}},
	model.DiseaseCureprob:   {model.Disease, []*Template{DiseaseCureprob}},
	model.DiseaseEasyget:    {model.Disease, []*Template{DiseaseEasyget}},
	model.DiseaseDesc:       {model.Disease, []*Template{DiseaseDesc}},
	model.DiseaseDepartment: {model.Disease, []*Template{DiseaseDepartment}},
	model.DrugProducer:      {model.Drug, []*Template{DrugProducer}},
	model.DrugDesc:          {model.Drug, []*Template{DrugDesc}},
}

// Plan binds the entities of each classified question type to its templates.
// Types with no template or no entity of the required type are dropped.
func Plan(c model.Classification) []Entry {
	types := c.QuestionTypes
	if c.Has(model.DrugProducer) {
		types = without(types, model.DrugDesc)
	}

	var entries []Entry
	for _, qt := range types {
		b, ok := bindings[qt]
		if !ok {
			continue
		}
		subjects := c.Entities.OfType(b.subject)
		if len(subjects) == 0 {
			continue
		}

		var queries []Query
		for _, t := range b.templates {
			if t.Multi {
				queries = append(queries, Query{
					Template: t,
					Entity:   subjects[0],
					Params:   map[string]any{"names": subjects},
				})
				continue
			}
			for _, s := range subjects {
				queries = append(queries, Query{
					Template: t,
					Entity:   s,
					Params:   map[string]any{"name": s},
				})
			}
		}
		entries = append(entries, Entry{QuestionType: qt, Queries: queries})
	}
	return entries
}

func without(types []model.QuestionType, drop model.QuestionType) []model.QuestionType {
	out := make([]model.QuestionType, 0, len(types))
	for _, t := range types {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}
