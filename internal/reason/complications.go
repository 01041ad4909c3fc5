package reason

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

const (
	listShown    = 6 // complications named in the first section
	detailShown  = 4 // complications detailed in the second section
	sampleShown  = 5
	plainShown   = 15
	preventRunes = 200
)

// chain describes a disease → complication → X question
type chain struct {
	limit     int
	title     string // formatted with the disease
	listLabel string
	secondHop string
	action    string
	query     string
	relation  string
	summary   string // formatted with the number of complications that had data
	render    func(e *Executor) func(context.Context, string) (string, bool, error)
	missing   []string
	footer    string
}

var chains = map[string]chain{
	ComplicationSymptom: {
		limit:     limitComplicationsSymp,
		title:     "🔗 %s并发症推理链",
		listLabel: "常见并发症：",
		secondHop: "并发症 → 相关症状",
		action:    "查询各并发症的典型症状",
		query:     "并发症 → 症状",
		relation:  "has_symptom",
		summary:   "分析了 %d 种并发症的症状",
		render:    (*Executor).symptomBlock,
		missing:   []string{"⚠️ 暂未找到这些并发症的进一步症状信息。"},
		footer:    "⚠️ 提示：如出现上述症状，请及时就医检查。",
	},
	ComplicationTreatment: {
		limit:     limitComplicationsChain,
		title:     "💊 %s并发症治疗推理",
		listLabel: "需警惕的并发症：",
		secondHop: "并发症 → 治疗药物",
		action:    "查询各并发症的治疗药物",
		query:     "并发症 → 药物",
		relation:  "common_drug / recommand_drug",
		summary:   "找到 %d 种并发症的药物",
		render:    (*Executor).drugBlock,
		missing:   []string{"⚠️ 暂未找到这些并发症的用药信息。"},
		footer:    "⚠️ 重要提示：用药需遵医嘱，切勿自行用药！",
	},
	ComplicationFood: {
		limit:     limitComplicationsChain,
		title:     "🍽️ %s并发症饮食推理",
		listLabel: "需关注的并发症：",
		secondHop: "并发症 → 饮食建议",
		action:    "查询各并发症的饮食建议",
		query:     "并发症 → 饮食",
		relation:  "do_eat / recommand_eat / no_eat",
		summary:   "找到 %d 种并发症的饮食信息",
		render:    (*Executor).foodBlock,
		missing:   []string{"⚠️ 未找到详细的饮食信息，建议咨询专业医生或营养师。"},
		footer:    "💡 提示：饮食调理需结合个人情况，建议在医生指导下进行。",
	},
	ComplicationPrevention: {
		limit:     limitComplicationsChain,
		title:     "🛡️ %s并发症预防推理",
		listLabel: "需预防的并发症：",
		secondHop: "并发症 → 预防方法",
		action:    "查询各并发症的预防方法",
		query:     "并发症 → 预防",
		relation:  "prevent (属性)",
		summary:   "找到 %d 种并发症的预防信息",
		render:    (*Executor).preventionBlock,
		missing: []string{
			"⚠️ 未找到详细的预防信息。",
			"一般预防建议：",
			"1. 定期体检，监测相关指标",
			"2. 控制原发病，遵医嘱用药",
			"3. 保持健康的生活方式",
			"4. 如有异常症状，及时就医",
		},
		footer: "💡 重要提示：预防措施需结合个人情况，建议咨询专业医生制定个性化预防方案。",
	},
}

func firstStep(disease string, comps []string, n int) model.TraceStep {
	return model.TraceStep{
		Step:     1,
		Action:   fmt.Sprintf("查询「%s」的并发症", disease),
		Query:    "疾病 → 并发症",
		Relation: "acompany_with",
		Sample:   util.FirstN(comps, n),
	}
}

func (e *Executor) complicationChain(ctx context.Context, subject string, c chain) (*model.ReasoningResult, error) {
	disease, comps, miss, err := e.rootDisease(ctx, subject, c.limit)
	if err != nil || miss != nil {
		return miss, err
	}

	path := []model.TraceStep{firstStep(disease, comps, sampleShown)}
	blocks, hopErr := fanout(ctx, e, util.FirstN(comps, e.width), c.render(e))
	if len(blocks) > 0 {
		path = append(path, model.TraceStep{
			Step:     2,
			Action:   c.action,
			Query:    c.query,
			Relation: c.relation,
			Summary:  fmt.Sprintf(c.summary, len(blocks)),
		})
	}

	var a answer
	a.line(c.title, disease)
	a.blank()
	a.line("第一步：%s → 并发症", disease)
	a.line("%s%s", c.listLabel, join(comps, listShown))
	a.blank()
	a.line("第二步：%s", c.secondHop)
	switch {
	case len(blocks) == 0 && hopErr != nil:
		a.line("%s", secondHopFailed)
	case len(blocks) == 0:
		for _, m := range c.missing {
			a.line("%s", m)
		}
	}
	for _, b := range util.FirstN(blocks, detailShown) {
		a.line("%s", b.value)
	}
	a.blank()
	a.line("%s", c.footer)

	return &model.ReasoningResult{
		Success:      true,
		ActualEntity: disease,
		Answer:       a.String(),
		Path:         path,
		Err:          hopErr,
	}, nil
}

func (e *Executor) symptomBlock() func(context.Context, string) (string, bool, error) {
	return func(ctx context.Context, comp string) (string, bool, error) {
		symptoms, err := e.names(ctx, querySymptoms, comp, limitPerEntity)
		if err != nil || len(symptoms) == 0 {
			return "", false, err
		}
		return fmt.Sprintf("%s 的症状：%s", comp, join(symptoms, sampleShown)), true, nil
	}
}

func (e *Executor) drugBlock() func(context.Context, string) (string, bool, error) {
	return func(ctx context.Context, comp string) (string, bool, error) {
		drugs, err := e.names(ctx, queryDrugs, comp, limitPerEntity)
		if err != nil || len(drugs) == 0 {
			return "", false, err
		}
		return fmt.Sprintf("%s 的常用药：%s", comp, join(drugs, detailShown)), true, nil
	}
}

func (e *Executor) foodBlock() func(context.Context, string) (string, bool, error) {
	return func(ctx context.Context, comp string) (string, bool, error) {
		good, err := e.names(ctx, queryGoodFoods, comp, limitPerEntity)
		if err != nil {
			return "", false, err
		}
		bad, err := e.names(ctx, queryBadFoods, comp, limitPerEntity)
		if err != nil {
			return "", false, err
		}
		if len(good) == 0 && len(bad) == 0 {
			return "", false, nil
		}

		lines := []string{comp + " 的饮食建议："}
		if len(good) > 0 {
			lines = append(lines, "✅ 宜吃："+join(good, sampleShown))
		}
		if len(bad) > 0 {
			lines = append(lines, "❌ 忌吃："+join(bad, sampleShown))
		}
		return strings.Join(lines, "\n"), true, nil
	}
}

func (e *Executor) preventionBlock() func(context.Context, string) (string, bool, error) {
	return func(ctx context.Context, comp string) (string, bool, error) {
		rows, err := e.client.Run(ctx, queryProperties, map[string]any{"name": comp})
		if err != nil || len(rows) == 0 {
			return "", false, err
		}
		text := strings.TrimSpace(rows[0].String("prevent"))
		if text == "" {
			return "", false, nil
		}
		return comp + " 的预防：\n" + util.TruncateRunes(text, preventRunes, "..."), true, nil
	}
}

// complications lists a disease's complications and, where the graph has
// them, their symptoms
func (e *Executor) complications(ctx context.Context, subject string) (*model.ReasoningResult, error) {
	disease, comps, miss, err := e.rootDisease(ctx, subject, limitComplicationsPlain)
	if err != nil || miss != nil {
		return miss, err
	}

	path := []model.TraceStep{firstStep(disease, comps, 10)}
	blocks, hopErr := fanout(ctx, e, util.FirstN(comps, e.width), e.symptomBlock())
	if len(blocks) > 0 {
		path = append(path, model.TraceStep{
			Step:     2,
			Action:   "查询各并发症的典型症状",
			Query:    "并发症 → 症状",
			Relation: "has_symptom",
			Summary:  fmt.Sprintf("分析了 %d 种并发症的症状", len(blocks)),
		})
	}

	var a answer
	a.line("🔗 %s的并发症", disease)
	a.blank()
	a.line("常见并发症：")
	for i, c := range util.FirstN(comps, plainShown) {
		a.line("%d. %s", i+1, c)
	}
	if len(comps) > plainShown {
		a.blank()
		a.line("（共找到 %d 种并发症，以上显示前%d种）", len(comps), plainShown)
	}
	a.blank()
	switch {
	case len(blocks) == 0 && hopErr != nil:
		a.line("%s", secondHopFailed)
	case len(blocks) == 0:
		a.line("⚠️ 暂未找到这些并发症的进一步症状信息。")
	default:
		a.line("并发症相关症状：")
		for _, b := range util.FirstN(blocks, detailShown) {
			a.line("%s", b.value)
		}
	}
	a.blank()
	a.line("⚠️ 提示：并发症需要及时预防和治疗，如有相关症状请及时就医。")

	return &model.ReasoningResult{
		Success:      true,
		ActualEntity: disease,
		Answer:       a.String(),
		Path:         path,
		Err:          hopErr,
	}, nil
}
