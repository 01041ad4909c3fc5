// Package answer renders graph results as natural-language answers.
package answer

import (
	"fmt"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/plan"
	"github.com/ppiankov/medqa/internal/util"
)

const (
	// DefaultLimit caps listed results per answer
	DefaultLimit = 20

	symptomDiseaseLimit = 8
	groupLimit          = 5 // diseases per grouped symptom answer
	groupItemLimit      = 3 // items per disease in a grouped answer
	alternateLimit      = 3

	listSep  = "、"
	lineSep  = "\n"
	groupSep = "；"

	unknownSymptom = "该症状"
	noData         = "暂无数据"
)

// Synthesizer turns decoded rows into one answer segment per question type
type Synthesizer struct {
	picker *Picker
	limit  int
}

// NewSynthesizer creates a synthesizer. A non-positive limit uses DefaultLimit.
func NewSynthesizer(picker *Picker, limit int) *Synthesizer {
	if picker == nil {
		picker = NewPicker(0)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Synthesizer{picker: picker, limit: limit}
}

// Synthesize renders rows for qt. It reports false when the rows carry
// nothing to say.
func (s *Synthesizer) Synthesize(qt model.QuestionType, rows []plan.Row) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}

	tmpl := s.picker.Pick(Phrases(qt))
	subject := rows[0].Subject

	switch qt {
	case model.SymptomDisease:
		return s.symptomDisease(tmpl, rows)
	case model.SymptomCureway:
		return s.grouped(tmpl, symptomSubject(rows), rows, func(r plan.Row) []string { return r.Values })
	case model.SymptomDrug:
		subj := rows[0].Symptom
		if subj == "" {
			subj = unknownSymptom
		}
		return s.grouped(tmpl, subj, rows, func(r plan.Row) []string { return []string{r.Object} })
	case model.DiseaseDepartment:
		return s.department(tmpl, rows)
	case model.DiseaseDoFood:
		return s.doFood(tmpl, subject, rows)

	case model.DiseaseCause, model.DiseasePrevent, model.DiseaseDesc, model.DrugDesc:
		return s.list(tmpl, subject, values(rows), lineSep)
	case model.DiseaseLasttime, model.DiseaseCureprob, model.DiseaseEasyget, model.DiseaseCureway:
		return s.list(tmpl, subject, values(rows), listSep)

	case model.DiseaseAcompany:
		var others []string
		for _, r := range rows {
			if r.Object != subject {
				others = append(others, r.Object)
			}
		}
		return s.list(tmpl, subject, others, listSep)

	case model.FoodNotDisease, model.FoodDoDisease:
		diseases := s.cap(subjects(rows))
		if len(diseases) == 0 {
			return "", false
		}
		return fill(tmpl, strings.Join(diseases, listSep), rows[0].Object), true

	case model.DrugDisease, model.CheckDisease:
		return s.list(tmpl, rows[0].Object, subjects(rows), listSep)

	default:
		// disease → neighbour relations and drug_producer
		return s.list(tmpl, subject, objects(rows), listSep)
	}
}

func (s *Synthesizer) cap(items []string) []string {
	return util.FirstN(util.Dedupe(items), s.limit)
}

func (s *Synthesizer) list(tmpl, subject string, items []string, sep string) (string, bool) {
	items = s.cap(items)
	if len(items) == 0 {
		return "", false
	}
	return fill(tmpl, subject, strings.Join(items, sep)), true
}

// symptomDisease lists the candidate diseases in match-count order and notes
// when more were found than shown
func (s *Synthesizer) symptomDisease(tmpl string, rows []plan.Row) (string, bool) {
	diseases := util.Dedupe(subjects(rows))
	if len(diseases) == 0 {
		return "", false
	}

	shown := util.FirstN(diseases, symptomDiseaseLimit)
	out := fill(tmpl, symptomSubject(rows), strings.Join(shown, listSep))
	if len(diseases) > len(shown) {
		out += fmt.Sprintf("\n\n💡 提示：共找到%d种相关疾病，以上为最常见的%d种。建议结合其他症状或前往医院进一步诊断。", len(diseases), len(shown))
	}
	return out, true
}

// grouped renders "disease：a、b；disease：c" for the first few diseases
func (s *Synthesizer) grouped(tmpl, subject string, rows []plan.Row, items func(plan.Row) []string) (string, bool) {
	var order []string
	byDisease := make(map[string][]string)
	for _, r := range rows {
		if r.Subject == "" {
			continue
		}
		vals := util.Dedupe(items(r))
		if len(vals) == 0 {
			continue
		}
		if _, ok := byDisease[r.Subject]; !ok {
			order = append(order, r.Subject)
		}
		byDisease[r.Subject] = append(byDisease[r.Subject], vals...)
	}
	if len(order) == 0 {
		return "", false
	}

	parts := make([]string, 0, groupLimit)
	for _, d := range util.FirstN(order, groupLimit) {
		vals := util.FirstN(util.Dedupe(byDisease[d]), groupItemLimit)
		parts = append(parts, d+"："+strings.Join(vals, listSep))
	}
	return fill(tmpl, subject, strings.Join(parts, groupSep)), true
}

// department names the department most candidate diseases belong to, then
// up to three alternates
func (s *Synthesizer) department(tmpl string, rows []plan.Row) (string, bool) {
	// Count each disease once per department
	var pairs []string
	seen := make(map[[2]string]bool)
	for _, r := range rows {
		k := [2]string{r.Subject, r.Object}
		if r.Object == "" || seen[k] {
			continue
		}
		seen[k] = true
		pairs = append(pairs, r.Object)
	}
	ranked := util.RankByFrequency(pairs)
	if len(ranked) == 0 {
		return "", false
	}

	subject := strings.Join(util.FirstN(util.Dedupe(subjects(rows)), alternateLimit), listSep)
	out := fill(tmpl, subject, ranked[0])
	if rest := util.FirstN(ranked[1:], alternateLimit); len(rest) > 0 {
		out += "\n也可考虑：" + strings.Join(rest, listSep)
	}
	return out, true
}

func (s *Synthesizer) doFood(tmpl, subject string, rows []plan.Row) (string, bool) {
	var good, recipes []string
	for _, r := range rows {
		switch r.Relation {
		case "do_eat":
			good = append(good, r.Object)
		case "recommand_eat":
			recipes = append(recipes, r.Object)
		}
	}
	good, recipes = s.cap(good), s.cap(recipes)
	if len(good) == 0 && len(recipes) == 0 {
		return "", false
	}
	return fill(tmpl, subject, joinOr(good, noData), joinOr(recipes, noData)), true
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, listSep)
}

// symptomSubject names the symptoms a candidate query matched
func symptomSubject(rows []plan.Row) string {
	if m := util.Dedupe(rows[0].Matched); len(m) > 0 {
		return strings.Join(m, listSep)
	}
	return unknownSymptom
}

func subjects(rows []plan.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Subject)
	}
	return out
}

func objects(rows []plan.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Object)
	}
	return out
}

func values(rows []plan.Row) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Values...)
	}
	return out
}
