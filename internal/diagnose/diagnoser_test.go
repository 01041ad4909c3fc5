package diagnose

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/graph/graphtest"
)

func pair(disease, symptom string) graph.Record {
	return graph.Record{"disease": disease, "symptom": symptom}
}

func TestDiagnose_RanksByMatchedSymptoms(t *testing.T) {
	stub := graphtest.New()
	stub.When("CONTAINS $name", "头痛").Return(
		pair("感冒", "头痛"), pair("偏头痛", "偏头痛"), pair("感冒", "剧烈头痛"))
	stub.When("CONTAINS $name", "发热").Return(
		pair("肺炎", "发热"), pair("感冒", "发热"))

	got, err := New(stub, 2, zap.NewNop()).Diagnose(context.Background(), []string{"头痛", "发热"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "感冒", got[0].Disease)
	assert.Equal(t, 100, got[0].MatchRate)
	assert.Equal(t, []string{"头痛", "发热"}, got[0].MatchedSymptoms)
	assert.Equal(t, []string{"头痛", "剧烈头痛", "发热"}, got[0].RelatedSymptoms)

	// ties keep first-seen order
	assert.Equal(t, "偏头痛", got[1].Disease)
	assert.Equal(t, 50, got[1].MatchRate)
	assert.Equal(t, "肺炎", got[2].Disease)
}

func TestDiagnose_DedupesInput(t *testing.T) {
	stub := graphtest.New()
	stub.When("CONTAINS $name", "咳嗽").Return(pair("支气管炎", "咳嗽"))

	got, err := New(stub, 2, zap.NewNop()).Diagnose(context.Background(), []string{"咳嗽", "咳嗽", ""})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].MatchRate)
	assert.Equal(t, 1, stub.CallCount("CONTAINS $name"))
}

func TestDiagnose_CapsResults(t *testing.T) {
	var rows []graph.Record
	for i := 0; i < 15; i++ {
		rows = append(rows, pair(fmt.Sprintf("疾病%d", i), "乏力"))
	}
	stub := graphtest.New()
	stub.When("CONTAINS $name", "乏力").Return(rows...)

	got, err := New(stub, 1, zap.NewNop()).Diagnose(context.Background(), []string{"乏力"})
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
	assert.Equal(t, "疾病0", got[0].Disease)
}

func TestDiagnose_PartialFailure(t *testing.T) {
	stub := graphtest.New()
	stub.When("CONTAINS $name", "头痛").Return(pair("感冒", "头痛"))
	stub.When("CONTAINS $name", "发热").Fail(errors.New("timeout"))

	got, err := New(stub, 2, zap.NewNop()).Diagnose(context.Background(), []string{"头痛", "发热"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].MatchRate)
}

func TestDiagnose_AllFail(t *testing.T) {
	boom := errors.New("connection refused")
	stub := graphtest.New().FailAll(boom)

	_, err := New(stub, 2, zap.NewNop()).Diagnose(context.Background(), []string{"头痛", "发热"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDiagnose_NoSymptoms(t *testing.T) {
	_, err := New(graphtest.New(), 2, zap.NewNop()).Diagnose(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoSymptoms)
}

func TestCommonSymptoms_SkipsJunk(t *testing.T) {
	stub := graphtest.New()
	stub.When("count(d) AS cnt", "").Return(graphtest.Rows("symptom", "头痛", "驻站医", "发热", "驻站医师")...)

	got, err := New(stub, 1, zap.NewNop()).CommonSymptoms(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"头痛", "发热"}, got)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultCommonLimit, calls[0].Params["limit"])
}

func TestDiagnose_RateMatchesCoverage(t *testing.T) {
	symptomPool := []string{"头痛", "发热", "咳嗽", "乏力", "恶心"}
	diseasePool := []string{"感冒", "肺炎", "流感", "胃炎", "偏头痛", "贫血"}

	rapid.Check(t, func(t *rapid.T) {
		symptoms := rapid.SliceOfNDistinct(rapid.SampledFrom(symptomPool), 1, len(symptomPool), rapid.ID[string]).Draw(t, "symptoms")
		table := make(map[string][]string)
		for _, s := range symptoms {
			table[s] = rapid.SliceOfDistinct(rapid.SampledFrom(diseasePool), rapid.ID[string]).Draw(t, s)
		}

		client := graph.ClientFunc(func(_ context.Context, _ string, params map[string]any) ([]graph.Record, error) {
			s := params["name"].(string)
			var rows []graph.Record
			for _, d := range table[s] {
				rows = append(rows, pair(d, s))
			}
			return rows, nil
		})

		got, err := New(client, 3, zap.NewNop()).Diagnose(context.Background(), symptoms)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, d := range got {
			if want := len(d.MatchedSymptoms) * 100 / len(symptoms); d.MatchRate != want {
				t.Fatalf("%s: rate %d, want %d", d.Disease, d.MatchRate, want)
			}
			if i > 0 && len(got[i-1].MatchedSymptoms) < len(d.MatchedSymptoms) {
				t.Fatalf("results not ranked: %v", got)
			}
			for _, m := range d.MatchedSymptoms {
				found := false
				for _, dd := range table[m] {
					found = found || dd == d.Disease
				}
				if !found {
					t.Fatalf("%s credited with %s", d.Disease, m)
				}
			}
		}
	})
}
