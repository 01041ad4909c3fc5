package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/graph/graphtest"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/plan"
)

// renderings lists every valid output for qt with the given arguments
func renderings(qt model.QuestionType, suffix string, args ...string) []string {
	var out []string
	for _, p := range Phrases(qt) {
		out = append(out, fill(p, args...)+suffix)
	}
	return out
}

func relation(subject, rel string, objects ...string) []plan.Row {
	var rows []plan.Row
	for _, o := range objects {
		rows = append(rows, plan.Row{Subject: subject, Relation: rel, Object: o})
	}
	return rows
}

func TestSynthesize_NoRows(t *testing.T) {
	s := NewSynthesizer(NewPicker(1), 0)
	for qt := range phrases {
		got, ok := s.Synthesize(qt, nil)
		assert.False(t, ok, qt)
		assert.Empty(t, got, qt)
	}
}

func TestSynthesize_DepartmentEmpty(t *testing.T) {
	s := NewSynthesizer(NewPicker(1), 0)
	_, ok := s.Synthesize(model.DiseaseDepartment, []plan.Row{})
	assert.False(t, ok)

	// Rows without a department say nothing either
	_, ok = s.Synthesize(model.DiseaseDepartment, []plan.Row{{Subject: "感冒"}})
	assert.False(t, ok)
}

func TestSynthesize_RelationListDedupes(t *testing.T) {
	s := NewSynthesizer(NewPicker(7), 0)
	rows := relation("感冒", "has_symptom", "发热", "咳嗽", "发热", "")

	got, ok := s.Synthesize(model.DiseaseSymptom, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseSymptom, "", "感冒", "发热、咳嗽"), got)
}

func TestSynthesize_CapsAtLimit(t *testing.T) {
	s := NewSynthesizer(NewPicker(7), 2)
	got, ok := s.Synthesize(model.DiseaseDrug, relation("感冒", "common_drug", "a", "b", "c"))
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseDrug, "", "感冒", "a、b"), got)
}

func TestSynthesize_Attributes(t *testing.T) {
	s := NewSynthesizer(NewPicker(3), 0)

	got, ok := s.Synthesize(model.DiseaseCureway, []plan.Row{{Subject: "感冒", Values: []string{"药物治疗", "支持性治疗"}}})
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseCureway, "", "感冒", "药物治疗、支持性治疗"), got)

	got, ok = s.Synthesize(model.DiseaseCause, []plan.Row{{Subject: "感冒", Values: []string{"病毒感染"}}})
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseCause, "", "感冒", "病毒感染"), got)

	_, ok = s.Synthesize(model.DiseaseCause, []plan.Row{{Subject: "感冒"}})
	assert.False(t, ok)
}

func TestSynthesize_SymptomDisease(t *testing.T) {
	s := NewSynthesizer(NewPicker(5), 0)

	var rows []plan.Row
	for _, d := range []string{"感冒", "流感", "肺炎"} {
		rows = append(rows, plan.Row{Subject: d, Matched: []string{"发热", "咳嗽"}, MatchCount: 2})
	}
	got, ok := s.Synthesize(model.SymptomDisease, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.SymptomDisease, "", "发热、咳嗽", "感冒、流感、肺炎"), got)

	// More candidates than shown adds a hint
	rows = nil
	for _, d := range strings.Split("a b c d e f g h i j", " ") {
		rows = append(rows, plan.Row{Subject: d})
	}
	got, ok = s.Synthesize(model.SymptomDisease, rows)
	require.True(t, ok)
	assert.Contains(t, got, "该症状")
	assert.Contains(t, got, "共找到10种相关疾病，以上为最常见的8种")
	assert.NotContains(t, got, "i、j")
}

func TestSynthesize_DepartmentRanksByDiseaseCount(t *testing.T) {
	s := NewSynthesizer(NewPicker(9), 0)
	rows := append(relation("感冒", "belongs_to", "内科", "呼吸内科"),
		relation("肺炎", "belongs_to", "呼吸内科", "感染科")...)

	got, ok := s.Synthesize(model.DiseaseDepartment, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseDepartment, "\n也可考虑：内科、感染科", "感冒、肺炎", "呼吸内科"), got)
}

func TestSynthesize_DepartmentTieKeepsFirstSeen(t *testing.T) {
	s := NewSynthesizer(NewPicker(9), 0)
	got, ok := s.Synthesize(model.DiseaseDepartment, relation("感冒", "belongs_to", "内科", "呼吸内科", "内科"))
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseDepartment, "\n也可考虑：呼吸内科", "感冒", "内科"), got)
}

func TestSynthesize_DoFood(t *testing.T) {
	s := NewSynthesizer(NewPicker(2), 0)

	rows := append(relation("感冒", "do_eat", "梨", "粥"), relation("感冒", "recommand_eat", "银耳汤")...)
	got, ok := s.Synthesize(model.DiseaseDoFood, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseDoFood, "", "感冒", "梨、粥", "银耳汤"), got)

	got, ok = s.Synthesize(model.DiseaseDoFood, relation("感冒", "recommand_eat", "银耳汤"))
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseDoFood, "", "感冒", "暂无数据", "银耳汤"), got)
}

func TestSynthesize_ReverseLookups(t *testing.T) {
	s := NewSynthesizer(NewPicker(4), 0)

	rows := []plan.Row{
		{Subject: "痛风", Relation: "no_eat", Object: "啤酒"},
		{Subject: "胃炎", Relation: "no_eat", Object: "啤酒"},
	}
	got, ok := s.Synthesize(model.FoodNotDisease, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.FoodNotDisease, "", "痛风、胃炎", "啤酒"), got)

	rows = []plan.Row{{Subject: "感冒", Object: "阿莫西林"}, {Subject: "肺炎", Object: "阿莫西林"}}
	got, ok = s.Synthesize(model.DrugDisease, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.DrugDisease, "", "阿莫西林", "感冒、肺炎"), got)
}

func TestSynthesize_AcompanyExcludesSubject(t *testing.T) {
	s := NewSynthesizer(NewPicker(4), 0)
	rows := relation("糖尿病", "acompany_with", "糖尿病足", "糖尿病", "糖尿病肾病")

	got, ok := s.Synthesize(model.DiseaseAcompany, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.DiseaseAcompany, "", "糖尿病", "糖尿病足、糖尿病肾病"), got)
}

func TestSynthesize_GroupedSymptomAnswers(t *testing.T) {
	s := NewSynthesizer(NewPicker(4), 0)

	rows := []plan.Row{
		{Subject: "感冒", Object: "a", Symptom: "头痛"},
		{Subject: "感冒", Object: "b", Symptom: "头痛"},
		{Subject: "感冒", Object: "c", Symptom: "头痛"},
		{Subject: "感冒", Object: "d", Symptom: "头痛"},
		{Subject: "偏头痛", Object: "e", Symptom: "头痛"},
	}
	got, ok := s.Synthesize(model.SymptomDrug, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.SymptomDrug, "", "头痛", "感冒：a、b、c；偏头痛：e"), got)

	rows = []plan.Row{{Subject: "感冒", Values: []string{"药物治疗"}, Matched: []string{"发热"}}}
	got, ok = s.Synthesize(model.SymptomCureway, rows)
	require.True(t, ok)
	assert.Contains(t, renderings(model.SymptomCureway, "", "发热", "感冒：药物治疗"), got)
}

func TestPicker_SeedIsReproducible(t *testing.T) {
	opts := Phrases(model.DiseaseSymptom)
	a, b := NewPicker(42), NewPicker(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(opts), b.Pick(opts))
	}
	assert.Equal(t, "", a.Pick(nil))
}

func TestSynthesize_AlwaysOneOfThePhrasings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		objs := rapid.SliceOfN(rapid.SampledFrom([]string{"发热", "咳嗽", "乏力", "头痛"}), 1, 10).Draw(t, "objects")

		s := NewSynthesizer(NewPicker(seed), 0)
		got, ok := s.Synthesize(model.DiseaseSymptom, relation("感冒", "has_symptom", objs...))
		if !ok {
			t.Fatalf("no answer for %v", objs)
		}

		var distinct []string
		seen := map[string]bool{}
		for _, o := range objs {
			if !seen[o] {
				seen[o] = true
				distinct = append(distinct, o)
			}
		}
		want := renderings(model.DiseaseSymptom, "", "感冒", strings.Join(distinct, "、"))
		found := false
		for _, w := range want {
			found = found || w == got
		}
		if !found {
			t.Fatalf("unexpected rendering %q", got)
		}
	})
}

func TestSearcher_DedupesDepartmentSegments(t *testing.T) {
	stub := graphtest.New()
	stub.When("belongs_to", "感冒").Return(
		graph.Record{"subject": "感冒", "relation": "belongs_to", "object": "内科"},
		graph.Record{"subject": "感冒", "relation": "belongs_to", "object": "呼吸内科"},
	)

	entry := plan.Entry{
		QuestionType: model.DiseaseDepartment,
		Queries: []plan.Query{{
			Template: plan.DiseaseDepartment,
			Entity:   "感冒",
			Params:   map[string]any{"name": "感冒"},
		}},
	}

	s := NewSearcher(stub, NewSynthesizer(NewPicker(1), 0), zap.NewNop())
	segments, err := s.Search(context.Background(), []plan.Entry{entry, entry})
	require.NoError(t, err)
	assert.Len(t, segments, 1)
}

func TestSearcher_PartialFailure(t *testing.T) {
	stub := graphtest.New()
	stub.When("has_symptom", "感冒").Return(graph.Record{"subject": "感冒", "object": "发热"})
	stub.When("need_check", "").Fail(errors.New("timeout"))

	c := model.Classification{
		Entities:      model.Entities{{Text: "感冒", Types: model.NewTypeSet(model.Disease)}},
		QuestionTypes: []model.QuestionType{model.DiseaseCheck, model.DiseaseSymptom},
	}

	s := NewSearcher(stub, NewSynthesizer(NewPicker(1), 0), zap.NewNop())
	segments, err := s.Search(context.Background(), plan.Plan(c))
	assert.ErrorIs(t, err, ErrPartial)
	assert.NotErrorIs(t, err, ErrGraphUnavailable)
	assert.ErrorContains(t, err, "1 of 2")
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0], "发热")
}

func TestSearcher_AllQueriesFailing(t *testing.T) {
	stub := graphtest.New().FailAll(graph.ErrUnavailable)
	c := model.Classification{
		Entities:      model.Entities{{Text: "感冒", Types: model.NewTypeSet(model.Disease)}},
		QuestionTypes: []model.QuestionType{model.DiseaseSymptom},
	}

	s := NewSearcher(stub, NewSynthesizer(nil, 0), nil)
	_, err := s.Search(context.Background(), plan.Plan(c))
	assert.ErrorIs(t, err, ErrGraphUnavailable)
	assert.ErrorIs(t, err, graph.ErrUnavailable)

	// No plan is not a failure
	segments, err := s.Search(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSegmentKey(t *testing.T) {
	a := SegmentKey(model.DiseaseDepartment, relation("感冒", "belongs_to", "内科", "呼吸内科"))
	b := SegmentKey(model.DiseaseDepartment, relation("感冒", "belongs_to", "呼吸内科", "内科"))
	assert.Equal(t, a, b)

	assert.Equal(t, "disease_symptom|感冒|发热|感冒|咳嗽|感冒|乏力",
		SegmentKey(model.DiseaseSymptom, relation("感冒", "has_symptom", "发热", "咳嗽", "乏力", "头痛")))
	assert.Equal(t, "", SegmentKey(model.DiseaseSymptom, nil))
}
