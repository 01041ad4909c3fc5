package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Dedupe([]string{"b", "a", "", "b", "c", "a"}))
	assert.Empty(t, Dedupe(nil))
}

func TestDedupe_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOf(rapid.SampledFrom([]string{"", "感冒", "发热", "头痛", "咳嗽"})).Draw(t, "in")
		out := Dedupe(in)

		seen := map[string]bool{}
		for _, s := range out {
			if s == "" || seen[s] {
				t.Fatalf("output %v has empty or repeated value %q", out, s)
			}
			seen[s] = true
		}
		for _, s := range in {
			if s != "" && !seen[s] {
				t.Fatalf("value %q lost", s)
			}
		}
		// Idempotent
		assert.Equal(t, out, Dedupe(out))
	})
}

func TestFirstN(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, FirstN(in, 2))
	assert.Equal(t, in, FirstN(in, 5))
	assert.Empty(t, FirstN(in, -1))
}

func TestRankByFrequency_TiesKeepFirstSeen(t *testing.T) {
	in := []string{"内科", "外科", "儿科", "外科", "儿科", "眼科"}
	assert.Equal(t, []string{"外科", "儿科", "内科", "眼科"}, RankByFrequency(in))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "预防感冒", TruncateRunes("预防感冒", 4, "..."))
	assert.Equal(t, "预防...", TruncateRunes("预防感冒", 2, "..."))
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "http://secure:8443")

	req, err := http.NewRequest("GET", "https://api.deepseek.com/v1", nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)

	req, err = http.NewRequest("GET", "http://localhost:11434", nil)
	require.NoError(t, err)
	u, err = fn(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy:8080", u.Host)
}
