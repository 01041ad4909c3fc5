package dialog

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

const (
	// HistoryWindow is how many messages a conversation keeps
	HistoryWindow = 10

	historyRunes = 500
)

// Track returns conv updated with one exchange. The last disease and symptom
// follow the latest entities of each type; history keeps HistoryWindow
// messages.
func Track(conv model.ConversationContext, question, answer string, entities model.Entities) model.ConversationContext {
	next := conv
	next.History = append(append([]model.Message(nil), conv.History...),
		model.Message{Role: model.RoleUser, Content: question},
		model.Message{Role: model.RoleAssistant, Content: answer},
	)
	if len(next.History) > HistoryWindow {
		next.History = next.History[len(next.History)-HistoryWindow:]
	}

	if len(entities) > 0 {
		next.LastEntities = append(model.Entities(nil), entities...)
		for _, e := range entities {
			if e.Types.Has(model.Disease) {
				next.LastDisease = e.Text
			}
			if e.Types.Has(model.Symptom) {
				next.LastSymptom = e.Text
			}
		}
	}
	return next
}

// Record advances conv past one answered question. Entities come from the
// result's classification; a reasoning answer carries none and leaves the
// last disease and symptom unchanged.
func Record(conv model.ConversationContext, question string, res model.ChatResult) model.ConversationContext {
	var entities model.Entities
	if res.Classification != nil {
		entities = res.Classification.Entities
	}
	return Track(conv, question, res.Answer, entities)
}

// RecentHistory returns the last n user and assistant messages with markup
// stripped and assistant turns cut to a bounded length
func RecentHistory(conv *model.ConversationContext, n int) []model.Message {
	if conv == nil {
		return nil
	}
	var out []model.Message
	for _, m := range util.FirstN(reversed(conv.History), n) {
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			continue
		}
		content := m.Content
		if strings.Contains(content, "<") {
			content = StripMarkup(content)
		}
		if m.Role == model.RoleAssistant {
			content = util.TruncateRunes(content, historyRunes, "")
		}
		out = append(out, model.Message{Role: m.Role, Content: content})
	}
	return reversed(out)
}

// StripMarkup drops HTML tags, keeping text content
func StripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
