package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// Render formats a chat result for terminal display: context and colloquial
// rewrite hints, the reasoning chain when one answered, then the answer
func Render(res model.ChatResult) string {
	var hints []string
	proc := res.Process

	if cr := proc.ContextResolved; cr != nil {
		hints = append(hints, fmt.Sprintf("🔗 已理解追问：「%s」→「%s」", cr.Original, cr.Resolved))
	}
	if rw := proc.Rewrite; rw != nil && len(rw.Rules) > 0 {
		hints = append(hints, fmt.Sprintf("💡 口语转换：「%s」→「%s」", rw.Original, rw.Rewritten))
	}
	if r := proc.Reasoning; r != nil && r.Success {
		desc := r.Description
		if desc == "" {
			desc = "多跳查询"
		}
		hints = append(hints, "🔗 知识推理 · "+desc)
		for _, s := range r.Path {
			hints = append(hints, fmt.Sprintf("  Step %d: %s (%s)", s.Step, s.Action, s.Relation))
		}
	}

	if len(hints) == 0 {
		return res.Answer
	}
	return strings.Join(hints, "\n") + "\n\n" + res.Answer
}
