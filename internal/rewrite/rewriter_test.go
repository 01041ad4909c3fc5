package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRewrite(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		question string
		want     string
		rules    []string
	}{
		{"body part with modifier", "我头好疼", "头痛", []string{"症状识别: 头痛"}},
		{"part alias", "我的肚子一直疼", "腹痛", []string{"症状识别: 腹痛"}},
		{"feeling prefix", "感觉头很晕", "头晕", []string{"症状识别: 头晕"}},
		{"discomfort", "胃不舒服怎么办", "胃痛怎么办", []string{"症状识别: 胃痛"}},
		{"discomfort alias", "嗓子难受", "咽喉痛", []string{"症状识别: 咽喉痛"}},
		{"fixed phrase then wording", "拉肚子咋办", "腹泻怎么办", []string{"症状识别: 腹泻", "咋办 → 怎么办"}},
		{"indicator to disease", "血糖偏高怎么办", "糖尿病怎么办", []string{"症状识别: 糖尿病"}},
		{"fever", "我发烧了", "发热", []string{"症状识别: 发热"}},
		{"drug wording", "感冒吃啥药", "感冒用什么药", []string{"吃啥药 → 用什么药"}},
		{"severity", "头痛要紧吗", "头痛严重吗", []string{"要紧吗 → 严重吗"}},
		{"standard question", "糖尿病有什么并发症", "糖尿病有什么并发症", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Rewrite(tt.question)
			assert.Equal(t, tt.question, got.Original)
			assert.Equal(t, tt.want, got.Rewritten)
			assert.Equal(t, tt.rules, got.Rules)
		})
	}
}

func TestRewrite_TrailingParticle(t *testing.T) {
	got := New().Rewrite("感冒了呢")

	assert.Equal(t, "感冒了", got.Rewritten)
	assert.Empty(t, got.Rules)
	assert.True(t, got.Changed())
}

func TestRewrite_OnlyOneParticle(t *testing.T) {
	got := New().Rewrite("好吧啊")
	assert.Equal(t, "好吧", got.Rewritten)
}

func TestRewrite_Empty(t *testing.T) {
	got := New().Rewrite("")
	assert.Equal(t, "", got.Rewritten)
	assert.False(t, got.Changed())
}

func TestAlternation_PrefersLongerWords(t *testing.T) {
	alt := alternation([]string{"肚子", "小肚子", "头"})
	assert.True(t, strings.HasPrefix(alt, "小肚子|"))
}

func TestRewrite_StandardPhrasingIsStable(t *testing.T) {
	r := New()
	fragments := []string{
		"糖尿病", "感冒", "头痛", "发热", "咳嗽",
		"有什么症状", "用什么药", "挂什么科", "怎么预防", "的并发症", "是什么原因",
	}

	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 1, 4).Draw(t, "parts")
		q := strings.Join(parts, "")

		got := r.Rewrite(q)
		if got.Changed() || len(got.Rules) > 0 {
			t.Fatalf("standard question %q rewritten to %q by %v", q, got.Rewritten, got.Rules)
		}
	})
}
