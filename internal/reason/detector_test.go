package reason

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDetect_Templates(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		question string
		typ      string
		entity   string
	}{
		{"糖尿病的并发症有什么症状", ComplicationSymptom, "糖尿病"},
		{"高血压这些并发症有哪些表现", ComplicationSymptom, "高血压"},
		{"针对糖尿病的并发症怎么治", ComplicationTreatment, "糖尿病"},
		{"头痛可能是什么病，需要做什么检查", SymptomDiseaseCheck, "头痛"},
		{"胸闷是什么病，应该挂什么科", SymptomDiseaseDept, "胸闷"},
		{"感冒吃什么药，挂什么科", DiseaseDrugDepartment, "感冒"},
		{"感冒挂什么科，吃什么药", DiseaseDrugDepartment, "感冒"},
		{"糖尿病的并发症饮食要注意什么", ComplicationFood, "糖尿病"},
		{"高血压并发症如何预防", ComplicationPrevention, "高血压"},
		{"糖尿病有哪些并发症", Complication, "糖尿病"},
		{"糖尿病的并发症", Complication, "糖尿病"},
		{"肺炎会引起什么病？", Complication, "肺炎"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			hop, ok := d.Detect(tt.question)
			require.True(t, ok)
			assert.Equal(t, tt.typ, hop.Type)
			assert.Equal(t, tt.entity, hop.Entity)
			assert.NotEmpty(t, hop.Hops)
			assert.NotEmpty(t, hop.Description)
		})
	}
}

func TestDetect_HopOrderFollowsQuestion(t *testing.T) {
	d := NewDetector()

	hop, ok := d.Detect("感冒挂什么科，吃什么药")
	require.True(t, ok)
	assert.Equal(t, []string{"disease→department", "disease→drug"}, hop.Hops)

	hop, ok = d.Detect("感冒吃什么药，挂什么科")
	require.True(t, ok)
	assert.Equal(t, []string{"disease→drug", "disease→department"}, hop.Hops)
}

func TestDetect_NoMatch(t *testing.T) {
	d := NewDetector()
	for _, q := range []string{"", "感冒吃什么药", "头痛怎么办", "糖尿病的症状有哪些"} {
		_, ok := d.Detect(q)
		assert.False(t, ok, q)
	}
}

func TestDetect_StripsPunctuation(t *testing.T) {
	hop, ok := NewDetector().Detect(" 糖尿病， 的并发症")
	require.True(t, ok)
	assert.Equal(t, "糖尿病", hop.Entity)
}

func TestDetect_SpecificBeforeGeneric(t *testing.T) {
	d := NewDetector()
	suffixes := map[string]string{
		"的并发症有什么症状": ComplicationSymptom,
		"的并发症怎么治":   ComplicationTreatment,
		"并发症饮食":     ComplicationFood,
		"并发症预防措施":   ComplicationPrevention,
	}

	rapid.Check(t, func(t *rapid.T) {
		disease := rapid.SampledFrom([]string{"糖尿病", "高血压", "冠心病", "慢性肾炎"}).Draw(t, "disease")
		suffix := rapid.SampledFrom([]string{"的并发症有什么症状", "的并发症怎么治", "并发症饮食", "并发症预防措施"}).Draw(t, "suffix")

		hop, ok := d.Detect(disease + suffix)
		if !ok {
			t.Fatalf("no match for %s%s", disease, suffix)
		}
		if hop.Type != suffixes[suffix] {
			t.Fatalf("%s%s matched %s", disease, suffix, hop.Type)
		}
		if hop.Entity != disease {
			t.Fatalf("captured %q", hop.Entity)
		}
	})
}

func TestPatterns_GenericComplicationIsLast(t *testing.T) {
	ps := NewDetector().Patterns()
	require.NotEmpty(t, ps)
	assert.Equal(t, Complication, ps[len(ps)-1].Type)
	for _, p := range ps[:len(ps)-1] {
		assert.NotEqual(t, Complication, p.Type)
	}
}
