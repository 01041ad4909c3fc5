// Package dialog rewrites follow-up questions using conversation context.
package dialog

import (
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// Recognizer finds lexicon entities in text
type Recognizer interface {
	Recognize(text string) model.Entities
}

var (
	diseasePronouns = []string{"它", "这个病", "这种病", "该病", "这病", "这个"}
	symptomPronouns = []string{"它", "这个症状", "这个"}

	complicationRefs = []string{"这些并发症", "该并发症"}
)

// followups are phrases that make sense only about an earlier subject.
// Groups are checked in order.
var followups = [][]string{
	{"它", "这个病", "这种病", "该病", "这个症状", "这个"},
	{"怎么预防", "如何预防", "预防方法"},
	{"怎么治疗", "如何治疗", "治疗方法", "怎么办", "咋办", "怎么治"},
	{"吃什么药", "用什么药", "有什么药", "该吃什么药", "能吃什么药"},
	{"吃什么好", "能吃什么", "饮食", "应该吃什么", "可以吃什么"},
	{"不能吃什么", "忌口", "禁忌", "不能吃", "忌什么"},
	{"有什么症状", "症状是什么", "什么表现", "有哪些症状"},
	{"挂什么科", "看什么科", "去什么科", "该挂什么科"},
	{"什么原因", "怎么引起", "为什么会", "是什么原因"},
	{"做什么检查", "需要检查什么", "要做什么检查", "检查什么"},
}

// Resolver rewrites pronouns and elliptical follow-ups. It never modifies the
// conversation context.
type Resolver struct {
	recognizer Recognizer
}

func NewResolver(r Recognizer) *Resolver {
	return &Resolver{recognizer: r}
}

// Resolve returns the rewritten question and whether anything changed.
//
// With a last disease, complication references and pronouns are replaced by
// it. With only a last symptom, symptom pronouns are replaced. Otherwise a
// question with no entity of its own that matches a follow-up phrase gets the
// last disease (or symptom) prepended.
func (r *Resolver) Resolve(question string, conv *model.ConversationContext) (string, bool) {
	if conv == nil || question == "" {
		return question, false
	}
	disease, symptom := conv.LastDisease, conv.LastSymptom

	if disease != "" {
		resolved := question
		for _, ref := range complicationRefs {
			resolved = strings.ReplaceAll(resolved, ref, disease+"的并发症")
		}
		if !strings.Contains(resolved, "并发症") {
			resolved = strings.ReplaceAll(resolved, "这些", disease)
		}
		if p, ok := firstContained(resolved, diseasePronouns); ok {
			return strings.ReplaceAll(resolved, p, disease), true
		}
		if resolved != question {
			return resolved, true
		}
	} else if symptom != "" {
		if p, ok := firstContained(question, symptomPronouns); ok {
			return strings.ReplaceAll(question, p, symptom), true
		}
	}

	subject := disease
	if subject == "" {
		subject = symptom
	}
	if subject == "" || r.hasEntity(question) {
		return question, false
	}
	for _, group := range followups {
		if _, ok := firstContained(question, group); ok {
			return subject + question, true
		}
	}
	return question, false
}

func (r *Resolver) hasEntity(question string) bool {
	if r.recognizer == nil {
		return false
	}
	return len(r.recognizer.Recognize(question)) > 0
}

func firstContained(s string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.Contains(s, c) {
			return c, true
		}
	}
	return "", false
}
