package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSet_ListIsCanonicalOrder(t *testing.T) {
	s := NewTypeSet(Symptom, Disease, Producer)

	assert.Equal(t, []EntityType{Disease, Symptom, Producer}, s.List())
	assert.True(t, s.Has(Symptom))
	assert.False(t, s.Has(Drug))
	assert.Equal(t, 3, s.Len())
}

func TestTypeSet_JSON(t *testing.T) {
	s := NewTypeSet(Disease, Symptom)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["disease","symptom"]`, string(data))

	var back TypeSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	assert.Error(t, json.Unmarshal([]byte(`["organ"]`), &back))
}

func TestParseEntityType(t *testing.T) {
	for _, typ := range AllEntityTypes() {
		parsed, err := ParseEntityType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseEntityType("organ")
	assert.Error(t, err)
}

func TestEntities_MergeKeepsFirstOccurrence(t *testing.T) {
	var e Entities
	e = e.Merge(Entity{Text: "头痛", Types: NewTypeSet(Symptom)})
	e = e.Merge(Entity{Text: "感冒", Types: NewTypeSet(Disease)})
	e = e.Merge(Entity{Text: "头痛", Types: NewTypeSet(Disease)})
	e = e.Merge(Entity{Text: "空", Types: 0})

	require.Len(t, e, 2)
	assert.Equal(t, []string{"头痛", "感冒"}, e.Texts())
	assert.Equal(t, NewTypeSet(Disease, Symptom), e[0].Types)
	assert.Equal(t, []string{"头痛", "感冒"}, e.OfType(Disease))
	assert.Equal(t, NewTypeSet(Disease, Symptom), e.Types())
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Reasoning.FuzzyMaxExtra)
	assert.Equal(t, 2, cfg.Reasoning.FuzzyWindow)
	assert.Equal(t, 20, cfg.Answer.DisplayLimit)
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Backend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Provider = "unknown"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}
