package lexicon

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ppiankov/medqa/internal/model"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"disease.txt":    {Data: []byte("糖尿病\n感冒\n糖尿病足\n头痛\n")},
		"symptom.txt":    {Data: []byte("头痛\n发热\n咳嗽\n腹泻\n")},
		"drug.txt":       {Data: []byte("阿莫西林\n")},
		"food.txt":       {Data: []byte("\ufeff鸡蛋\n\n  芹菜  \n")},
		"check.txt":      {Data: []byte("血常规\n")},
		"department.txt": {Data: []byte("内科\n")},
		"producer.txt":   {Data: []byte("华北制药\n")},
		"deny.txt":       {Data: []byte("不要\n忌\n")},
		"synonym.txt":    {Data: []byte("# 标准词=别名\n腹泻=拉肚子=闹肚子\n感冒=伤风\n\n")},
	}
}

func mustLoad(t *testing.T) *Store {
	t.Helper()
	s, err := Load(testFS())
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := mustLoad(t)

	assert.Equal(t, model.NewTypeSet(model.Disease, model.Symptom), s.Types("头痛"))
	assert.Equal(t, model.NewTypeSet(model.Food), s.Types("芹菜"))
	assert.Equal(t, model.NewTypeSet(model.Food), s.Types("鸡蛋"))
	assert.True(t, s.Has("华北制药"))
	assert.Equal(t, []string{"糖尿病", "糖尿病足"}, s.OfType(model.Disease)[2:])

	// File entries first, then built-ins that were missing
	assert.Equal(t, []string{"不要", "忌", "不适合", "不能"}, s.Deny())

	canon, ok := s.Canonical("闹肚子")
	assert.True(t, ok)
	assert.Equal(t, "腹泻", canon)
	assert.Equal(t, model.NewTypeSet(model.Symptom), s.Types("拉肚子"))
}

func TestLoad_MissingTypeFile(t *testing.T) {
	fsys := testFS()
	delete(fsys, "drug.txt")

	_, err := Load(fsys)
	assert.ErrorContains(t, err, "drug.txt")
}

func TestLoad_OptionalFiles(t *testing.T) {
	fsys := testFS()
	delete(fsys, "deny.txt")
	delete(fsys, "synonym.txt")

	s, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, builtinDeny, s.Deny())
	_, ok := s.Canonical("伤风")
	assert.False(t, ok)
}

func TestRecognize_SingleTerm(t *testing.T) {
	r := NewRecognizer(mustLoad(t))

	got := r.Recognize("头痛")
	require.Len(t, got, 1)
	assert.Equal(t, "头痛", got[0].Text)
	assert.Equal(t, model.NewTypeSet(model.Disease, model.Symptom), got[0].Types)
}

func TestRecognize_OverlapsAndOrder(t *testing.T) {
	r := NewRecognizer(mustLoad(t))

	got := r.Recognize("糖尿病足和感冒会头痛吗，感冒")
	assert.Equal(t, []string{"糖尿病", "糖尿病足", "感冒", "头痛"}, got.Texts())
}

func TestRecognize_AliasCarriesCanonicalTypes(t *testing.T) {
	r := NewRecognizer(mustLoad(t))

	got := r.Recognize("老是拉肚子")
	require.Len(t, got, 1)
	assert.Equal(t, "拉肚子", got[0].Text)
	assert.True(t, got[0].Types.Has(model.Symptom))
}

func TestRecognize_Empty(t *testing.T) {
	r := NewRecognizer(mustLoad(t))
	assert.Empty(t, r.Recognize(""))
	assert.Empty(t, r.Recognize("今天天气不错"))

	empty := NewRecognizer(NewStore(nil, nil, nil))
	assert.Empty(t, empty.Recognize("糖尿病"))
}

// Every term recognized on its own yields exactly its dictionary record
func TestRecognize_SingleTermProperty(t *testing.T) {
	words := map[model.EntityType][]string{
		model.Disease: {"感冒", "肺炎", "胃炎"},
		model.Symptom: {"发热", "咳嗽", "肺炎"},
		model.Drug:    {"布洛芬", "阿司匹林"},
		model.Food:    {"鸡蛋", "牛奶"},
		model.Check:   {"血常规"},
	}
	s := NewStore(words, nil, nil)
	r := NewRecognizer(s)
	terms := s.Terms()

	rapid.Check(t, func(t *rapid.T) {
		term := rapid.SampledFrom(terms).Draw(t, "term")
		got := r.Recognize(term)
		if len(got) != 1 || got[0].Text != term || got[0].Types != s.Types(term) {
			t.Fatalf("Recognize(%q) = %+v", term, got)
		}
	})
}

func TestNormalize_LongestAliasFirst(t *testing.T) {
	s := NewStore(
		map[model.EntityType][]string{model.Symptom: {"头痛", "偏头痛"}},
		nil,
		[][]string{{"头痛", "头疼"}, {"偏头痛", "偏头疼"}},
	)
	n := NewNormalizer(s)

	assert.Equal(t, "偏头痛和头痛", n.Normalize("偏头疼和头疼"))
	assert.Equal(t, "", n.Normalize(""))
}

func TestCanonicalize_Merges(t *testing.T) {
	s := mustLoad(t)
	n := NewNormalizer(s)
	r := NewRecognizer(s)

	got := n.Canonicalize(r.Recognize("拉肚子还腹泻，伤风了"))
	assert.Equal(t, []string{"腹泻", "感冒"}, got.Texts())
	assert.Equal(t, model.NewTypeSet(model.Disease), got[1].Types)
}
