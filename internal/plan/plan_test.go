package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/model"
)

func entities(pairs ...any) model.Entities {
	var out model.Entities
	for i := 0; i < len(pairs); i += 2 {
		out = out.Merge(model.Entity{Text: pairs[i].(string), Types: model.NewTypeSet(pairs[i+1].(model.EntityType))})
	}
	return out
}

func TestPlan_BindsEveryEntity(t *testing.T) {
	c := model.Classification{
		Entities:      entities("感冒", model.Disease, "肺炎", model.Disease),
		QuestionTypes: []model.QuestionType{model.DiseaseDrug},
	}

	entries := Plan(c)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DiseaseDrug, entries[0].QuestionType)

	// All common_drug queries come before any recommand_drug query
	var got []string
	for _, q := range entries[0].Queries {
		got = append(got, q.Template.Name+":"+q.Entity)
	}
	assert.Equal(t, []string{
		"common_drug:感冒", "common_drug:肺炎",
		"recommand_drug:感冒", "recommand_drug:肺炎",
	}, got)
	assert.Equal(t, map[string]any{"name": "感冒"}, entries[0].Queries[0].Params)
}

func TestPlan_DropsTagsWithoutEntities(t *testing.T) {
	c := model.Classification{
		Entities:      entities("阿莫西林", model.Drug),
		QuestionTypes: []model.QuestionType{model.DiseaseSymptom, model.DrugDisease, "unknown_tag"},
	}

	entries := Plan(c)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DrugDisease, entries[0].QuestionType)
}

func TestPlan_ProducerSuppressesDrugDesc(t *testing.T) {
	c := model.Classification{
		Entities:      entities("阿莫西林", model.Drug),
		QuestionTypes: []model.QuestionType{model.DrugDesc, model.DrugProducer},
	}

	entries := Plan(c)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DrugProducer, entries[0].QuestionType)
}

func TestPlan_SymptomSetIsOneQuery(t *testing.T) {
	c := model.Classification{
		Entities:      entities("头痛", model.Symptom, "发热", model.Symptom),
		QuestionTypes: []model.QuestionType{model.SymptomDisease, model.SymptomDrug},
	}

	entries := Plan(c)
	require.Len(t, entries, 2)

	require.Len(t, entries[0].Queries, 1)
	assert.Equal(t, []string{"头痛", "发热"}, entries[0].Queries[0].Params["names"])
	assert.Contains(t, entries[0].Queries[0].Template.Cypher, "$names")

	// Drug lookups stay per symptom
	assert.Len(t, entries[1].Queries, 2)
}

func TestPlan_EmptyClassification(t *testing.T) {
	assert.Empty(t, Plan(model.Classification{}))
}

func TestTemplates_DeclareReturnedFields(t *testing.T) {
	for qt, b := range bindings {
		for _, tmpl := range b.templates {
			for _, f := range tmpl.Fields {
				assert.Contains(t, tmpl.Cypher, " AS "+f, "%s %s", qt, tmpl.Name)
			}
			if tmpl.Multi {
				assert.Contains(t, tmpl.Cypher, "$names")
			} else {
				assert.Contains(t, tmpl.Cypher, "$name")
			}
		}
	}
}

func TestDecode(t *testing.T) {
	rows := Decode([]graph.Record{
		{"subject": "感冒", "value": []any{"药物治疗", "支持性治疗"}},
		{"subject": "流感", "matched": []any{"发热"}, "match_count": int64(1)},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"药物治疗", "支持性治疗"}, rows[0].Values)
	assert.Equal(t, []string{"发热"}, rows[1].Matched)
	assert.Equal(t, 1, rows[1].MatchCount)
}
