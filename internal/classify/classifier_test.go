package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ppiankov/medqa/internal/lexicon"
	"github.com/ppiankov/medqa/internal/model"
)

func ent(text string, types ...model.EntityType) model.Entity {
	return model.Entity{Text: text, Types: model.NewTypeSet(types...)}
}

func TestClassify_Rules(t *testing.T) {
	c := New(nil, []string{"不能", "不适合", "忌"})

	tests := []struct {
		name     string
		question string
		entities model.Entities
		want     []model.QuestionType
	}{
		{"disease symptom", "感冒有什么症状", model.Entities{ent("感冒", model.Disease)},
			[]model.QuestionType{model.DiseaseSymptom}},
		{"multi symptom auto", "头痛发热", model.Entities{ent("头痛", model.Symptom), ent("发热", model.Symptom)},
			[]model.QuestionType{model.SymptomDisease}},
		{"not food", "糖尿病不能吃什么", model.Entities{ent("糖尿病", model.Disease)},
			[]model.QuestionType{model.DiseaseNotFood}},
		{"do food", "糖尿病吃什么好", model.Entities{ent("糖尿病", model.Disease)},
			[]model.QuestionType{model.DiseaseDoFood}},
		{"food not disease", "鸡蛋不适合什么人", model.Entities{ent("鸡蛋", model.Food)},
			[]model.QuestionType{model.FoodNotDisease}},
		{"food do disease", "吃鸡蛋有什么好处", model.Entities{ent("鸡蛋", model.Food)},
			[]model.QuestionType{model.FoodDoDisease}},
		{"drug disease once", "阿莫西林能治什么病", model.Entities{ent("阿莫西林", model.Drug)},
			[]model.QuestionType{model.DrugDisease}},
		{"drug producer", "阿莫西林是哪个厂家生产的", model.Entities{ent("阿莫西林", model.Drug)},
			[]model.QuestionType{model.DrugProducer}},
		{"compound", "糖尿病用什么药，挂什么科", model.Entities{ent("糖尿病", model.Disease)},
			[]model.QuestionType{model.DiseaseDrug, model.DiseaseDepartment}},
		{"check disease", "血常规能查出什么病", model.Entities{ent("血常规", model.Check)},
			[]model.QuestionType{model.CheckDisease}},
		{"symptom cureway", "发热怎么办", model.Entities{ent("发热", model.Symptom)},
			[]model.QuestionType{model.SymptomCureway}},
		{"symptom drug", "咳嗽吃什么药", model.Entities{ent("咳嗽", model.Symptom)},
			[]model.QuestionType{model.SymptomDrug}},
		{"fallback disease", "糖尿病", model.Entities{ent("糖尿病", model.Disease)},
			[]model.QuestionType{model.DiseaseDesc}},
		{"fallback symptom", "发热", model.Entities{ent("发热", model.Symptom)},
			[]model.QuestionType{model.SymptomDisease}},
		{"fallback drug", "阿莫西林", model.Entities{ent("阿莫西林", model.Drug)},
			[]model.QuestionType{model.DrugDesc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.question, tt.entities)
			assert.Equal(t, tt.want, got.QuestionTypes)
		})
	}
}

func TestClassify_NoEntities(t *testing.T) {
	c := New(nil, nil)
	got := c.Classify("你好", nil)
	assert.True(t, got.Empty())
	assert.Empty(t, got.QuestionTypes)
}

func TestDisambiguate(t *testing.T) {
	c := New(nil, nil)
	both := model.Entities{ent("头痛", model.Disease, model.Symptom)}

	t.Run("symptom trigger wins", func(t *testing.T) {
		got := c.Classify("头痛有什么症状", both)
		assert.Equal(t, model.NewTypeSet(model.Symptom), got.Entities[0].Types)
		assert.Equal(t, []model.QuestionType{model.SymptomDisease}, got.QuestionTypes)
	})

	t.Run("cureway trigger forces disease", func(t *testing.T) {
		got := c.Classify("头痛怎么治疗", both)
		assert.Equal(t, model.NewTypeSet(model.Disease), got.Entities[0].Types)
		assert.Equal(t, []model.QuestionType{model.DiseaseCureway}, got.QuestionTypes)
	})

	t.Run("no trigger keeps both", func(t *testing.T) {
		got := c.Classify("头痛", both)
		assert.Equal(t, model.NewTypeSet(model.Disease, model.Symptom), got.Entities[0].Types)
		assert.Equal(t, []model.QuestionType{model.DiseaseDesc}, got.QuestionTypes)
	})

	// The caller's entities are left alone
	assert.Equal(t, model.NewTypeSet(model.Disease, model.Symptom), both[0].Types)
}

func TestClassify_AutoSymptomDiseaseFirst(t *testing.T) {
	c := New(nil, nil)
	got := c.Classify("头痛发热是什么症状", model.Entities{ent("头痛", model.Symptom), ent("发热", model.Symptom)})
	require.NotEmpty(t, got.QuestionTypes)
	assert.Equal(t, model.SymptomDisease, got.QuestionTypes[0])
	assert.Len(t, got.QuestionTypes, 1)
}

func TestLoadTriggers_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("belong:\n  - \"哪个门诊\"\n"), 0o644))

	tr, err := LoadTriggers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"哪个门诊"}, tr.Belong)
	assert.Equal(t, DefaultTriggers().Cause, tr.Cause)

	c := New(tr, nil)
	got := c.Classify("糖尿病去哪个门诊", model.Entities{ent("糖尿病", model.Disease)})
	assert.Equal(t, []model.QuestionType{model.DiseaseDepartment}, got.QuestionTypes)

	_, err = LoadTriggers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultTriggers_AllListsPresent(t *testing.T) {
	tr := DefaultTriggers()
	for name, list := range map[string][]string{
		"symptom": tr.Symptom, "cause": tr.Cause, "acompany": tr.Acompany, "food": tr.Food,
		"drug": tr.Drug, "prevent": tr.Prevent, "lasttime": tr.Lasttime, "cureway": tr.Cureway,
		"cureprob": tr.Cureprob, "easyget": tr.Easyget, "check": tr.Check, "belong": tr.Belong,
		"drug_disease": tr.DrugDisease, "producer": tr.Producer, "cure": tr.Cure,
	} {
		assert.NotEmpty(t, list, name)
	}
}

// Text without dictionary terms always comes back unclassified
func TestClassify_NoLexiconTermsProperty(t *testing.T) {
	store := lexicon.NewStore(map[model.EntityType][]string{
		model.Disease: {"感冒", "糖尿病"},
		model.Symptom: {"头痛", "发热"},
		model.Drug:    {"阿莫西林"},
	}, nil, nil)
	r := lexicon.NewRecognizer(store)
	c := New(nil, store.Deny())

	alphabet := []rune("你好吗我想问一下怎么办吃什么药有症状科室预防的了？！")
	rapid.Check(t, func(t *rapid.T) {
		runes := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 30).Draw(t, "runes")
		q := string(runes)
		got := c.Classify(q, r.Recognize(q))
		if !got.Empty() || len(got.QuestionTypes) != 0 {
			t.Fatalf("Classify(%q) = %+v", q, got)
		}
	})
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil, []string{"不能"})
	entities := model.Entities{ent("糖尿病", model.Disease), ent("阿莫西林", model.Drug)}
	q := "糖尿病能用阿莫西林吗，有什么症状，怎么预防，挂什么科"

	first := c.Classify(q, entities)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first.QuestionTypes, c.Classify(q, entities).QuestionTypes)
	}
}
