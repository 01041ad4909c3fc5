// Package reason detects and executes multi-hop questions over the knowledge graph.
package reason

import (
	"regexp"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// Reasoning chain types
const (
	ComplicationSymptom    = "disease_complication_symptom"
	ComplicationTreatment  = "disease_complication_treatment"
	SymptomDiseaseCheck    = "symptom_disease_check"
	SymptomDiseaseDept     = "symptom_disease_department"
	DiseaseDrugDepartment  = "disease_drug_department"
	ComplicationFood       = "disease_complication_food"
	ComplicationPrevention = "disease_complication_prevention"
	Complication           = "disease_complication"
)

// HopPattern is a compound question template. Group 1 captures the subject.
type HopPattern struct {
	Regex       *regexp.Regexp
	Type        string
	Hops        []string
	Description string
}

// patterns is tried in order and the first match wins, so every specific
// complication chain precedes the generic disease_complication entry
var patterns = []HopPattern{
	{
		Regex:       regexp.MustCompile(`(.+?)(?:的|这些|此|其|该)?(?:并发症|伴随病).*?(?:有什么症状|症状|表现)`),
		Type:        ComplicationSymptom,
		Hops:        []string{"disease→complication", "complication→symptom"},
		Description: "疾病→并发症→症状",
	},
	{
		Regex:       regexp.MustCompile(`(?:针对|对于|治疗)?(.+?)(?:的|这些|此|其|该)?(?:并发症|伴随病).*?(?:怎么治|如何治疗|用什么药|吃什么药|怎么办)`),
		Type:        ComplicationTreatment,
		Hops:        []string{"disease→complication", "complication→treatment"},
		Description: "疾病→并发症→治疗",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:可能是什么病|是什么病).*?(?:做什么检查|怎么检查|查什么)`),
		Type:        SymptomDiseaseCheck,
		Hops:        []string{"symptom→disease", "disease→check"},
		Description: "症状→疾病→检查",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:是什么病|怎么回事).*?(?:挂什么科|看什么科|去哪个科)`),
		Type:        SymptomDiseaseDept,
		Hops:        []string{"symptom→disease", "disease→department"},
		Description: "症状→疾病→科室",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:吃什么药|用什么药).*?(?:挂什么科|看什么科)`),
		Type:        DiseaseDrugDepartment,
		Hops:        []string{"disease→drug", "disease→department"},
		Description: "疾病→药物+科室",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:挂什么科|看什么科).*?(?:吃什么药|用什么药)`),
		Type:        DiseaseDrugDepartment,
		Hops:        []string{"disease→department", "disease→drug"},
		Description: "疾病→科室+药物",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:的并发症|并发症).*?(?:吃什么|饮食|忌口|能吃|不能吃)`),
		Type:        ComplicationFood,
		Hops:        []string{"disease→complication", "complication→food"},
		Description: "疾病→并发症→饮食",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:的?并发症|伴随病).*?(?:怎么预防|如何预防|预防措施|预防)`),
		Type:        ComplicationPrevention,
		Hops:        []string{"disease→complication", "complication→prevention"},
		Description: "疾病→并发症→预防",
	},
	{
		Regex:       regexp.MustCompile(`(.+?)(?:的并发症|并发症|会引起什么病|引起哪些病|有哪些并发症)`),
		Type:        Complication,
		Hops:        []string{"disease→complication"},
		Description: "疾病→并发症",
	},
}

var subjectPunct = regexp.MustCompile(`[，。？！,.?!]`)

// Detector matches questions against the compound templates.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	patterns []HopPattern
}

func NewDetector() *Detector {
	return &Detector{patterns: patterns}
}

// Patterns returns the template table in match order
func (d *Detector) Patterns() []HopPattern {
	return append([]HopPattern(nil), d.patterns...)
}

// Detect returns the first matching template. Most questions match none.
func (d *Detector) Detect(question string) (model.HopInfo, bool) {
	for _, p := range d.patterns {
		m := p.Regex.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		subject := subjectPunct.ReplaceAllString(strings.TrimSpace(m[1]), "")
		return model.HopInfo{
			Type:        p.Type,
			Entity:      subject,
			Hops:        append([]string(nil), p.Hops...),
			Description: p.Description,
		}, true
	}
	return model.HopInfo{}, false
}
