package reason

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

// rootSymptom finds diseases whose symptoms contain subject. The first
// matched symptom name becomes the actual subject.
func (e *Executor) rootSymptom(ctx context.Context, subject string) (symptom string, diseases []string, res *model.ReasoningResult, err error) {
	rows, err := e.client.Run(ctx, querySymptomDiseases, map[string]any{"name": subject, "limit": int64(limitSymptomDiseases)})
	if err != nil {
		return "", nil, nil, fmt.Errorf("diseases for symptom %q: %w", subject, err)
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.String("disease"))
	}
	diseases = util.Dedupe(names)
	if len(diseases) == 0 {
		return "", nil, notFound("未找到「%s」相关的疾病信息", subject), nil
	}

	symptom = rows[0].String("symptom")
	if symptom == "" {
		symptom = subject
	}
	return symptom, diseases, nil, nil
}

func symptomStep(symptom string, diseases []string) model.TraceStep {
	return model.TraceStep{
		Step:     1,
		Action:   fmt.Sprintf("根据「%s」推断可能疾病", symptom),
		Query:    "症状 → 疾病",
		Relation: "has_symptom (反向)",
		Sample:   util.FirstN(diseases, sampleShown),
	}
}

func (e *Executor) symptomChecks(ctx context.Context, subject string) (*model.ReasoningResult, error) {
	symptom, diseases, miss, err := e.rootSymptom(ctx, subject)
	if err != nil || miss != nil {
		return miss, err
	}

	path := []model.TraceStep{symptomStep(symptom, diseases)}
	checks, hopErr := fanout(ctx, e, util.FirstN(diseases, e.width), e.listFetcher(queryChecks, limitPerEntity))
	if len(checks) > 0 {
		path = append(path, model.TraceStep{
			Step:     2,
			Action:   "查询各疾病所需检查",
			Query:    "疾病 → 检查项目",
			Relation: "need_check",
			Summary:  fmt.Sprintf("找到 %d 种疾病的检查建议", len(checks)),
		})
	}

	var a answer
	a.line("🔬 %s诊断推理", symptom)
	a.blank()
	a.line("第一步：%s → 可能疾病", symptom)
	a.line("可能相关的疾病：%s", join(diseases, listShown))
	a.blank()
	a.line("第二步：疾病 → 建议检查")
	switch {
	case len(checks) == 0 && hopErr != nil:
		a.line("%s", secondHopFailed)
	case len(checks) == 0:
		a.line("⚠️ 暂未找到这些疾病的检查建议。")
	}
	for _, c := range util.FirstN(checks, detailShown) {
		a.line("%s 建议检查：%s", c.name, join(c.value, detailShown))
	}
	a.blank()
	a.line("💡 建议：如症状持续，请尽早就医进行专业诊断。")

	return &model.ReasoningResult{
		Success:      true,
		ActualEntity: symptom,
		Answer:       a.String(),
		Path:         path,
		Err:          hopErr,
	}, nil
}

func (e *Executor) symptomDepartments(ctx context.Context, subject string) (*model.ReasoningResult, error) {
	symptom, diseases, miss, err := e.rootSymptom(ctx, subject)
	if err != nil || miss != nil {
		return miss, err
	}

	path := []model.TraceStep{symptomStep(symptom, diseases)}
	depts, hopErr := fanout(ctx, e, util.FirstN(diseases, e.width), e.listFetcher(queryDepartments, limitDepartmentsPerEntry))
	if len(depts) > 0 {
		path = append(path, model.TraceStep{
			Step:     2,
			Action:   "查询各疾病所属科室",
			Query:    "疾病 → 科室",
			Relation: "belongs_to",
			Summary:  fmt.Sprintf("找到 %d 种疾病的科室归属", len(depts)),
		})
	}

	// Each disease votes once per department
	var votes []string
	for _, d := range depts {
		votes = append(votes, d.value...)
	}
	ranked := util.RankByFrequency(votes)

	var a answer
	a.line("🏥 %s就诊推理", symptom)
	a.blank()
	a.line("第一步：%s → 可能疾病", symptom)
	a.line("可能相关的疾病：%s", join(diseases, listShown))
	a.blank()
	a.line("第二步：疾病 → 推荐科室")
	switch {
	case len(ranked) == 0 && hopErr != nil:
		a.line("%s", secondHopFailed)
	case len(ranked) == 0:
		a.line("⚠️ 暂未找到这些疾病的科室信息。")
	default:
		a.line("首推科室：🎯 %s", ranked[0])
		if len(ranked) > 1 {
			a.line("也可考虑：%s", join(ranked[1:], 3))
		}
		a.blank()
		a.line("详细分析：")
		for _, d := range util.FirstN(depts, 3) {
			a.line("- %s → %s", d.name, strings.Join(d.value, "、"))
		}
	}

	return &model.ReasoningResult{
		Success:      true,
		ActualEntity: symptom,
		Answer:       a.String(),
		Path:         path,
		Err:          hopErr,
	}, nil
}

// drugsAndDepartments answers both halves of a compound question about one
// disease. Sections follow the order the question asked them in.
func (e *Executor) drugsAndDepartments(ctx context.Context, subject string, hops []string) (*model.ReasoningResult, error) {
	disease, ok, err := e.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", subject, err)
	}
	if !ok {
		return notFound("未找到「%s」的相关信息", subject), nil
	}

	drugs, err := e.names(ctx, queryDrugs, disease, limitCompoundDrugs)
	if err != nil {
		return nil, fmt.Errorf("drugs of %q: %w", disease, err)
	}
	depts, err := e.names(ctx, queryDepartments, disease, limitCompoundDepartments)
	if err != nil {
		return nil, fmt.Errorf("departments of %q: %w", disease, err)
	}
	if len(drugs) == 0 && len(depts) == 0 {
		return notFound("未找到「%s」的相关信息", disease), nil
	}

	path := []model.TraceStep{{
		Step:     1,
		Action:   fmt.Sprintf("查询「%s」的用药和科室", disease),
		Query:    "疾病 → 药物 + 科室",
		Relation: "common_drug + belongs_to",
		Summary:  fmt.Sprintf("药物 %d 种，科室 %d 种", len(drugs), len(depts)),
	}}

	var a answer
	a.line("📋 %s综合查询", disease)
	departmentsFirst := len(hops) > 0 && hops[0] == "disease→department"
	sections := []func(){
		func() {
			if len(drugs) == 0 {
				return
			}
			a.blank()
			a.line("💊 常用药物")
			more := ""
			if len(drugs) > 8 {
				more = fmt.Sprintf("（等共 %d 种）", len(drugs))
			}
			a.line("参考用药：%s%s", join(drugs, 8), more)
		},
		func() {
			if len(depts) == 0 {
				return
			}
			a.blank()
			a.line("🏥 就诊科室")
			a.line("推荐科室：%s", strings.Join(depts, "、"))
		},
	}
	if departmentsFirst {
		sections[0], sections[1] = sections[1], sections[0]
	}
	for _, s := range sections {
		s()
	}
	a.blank()
	a.line("⚠️ 提示：具体用药请遵医嘱！")

	return &model.ReasoningResult{
		Success:      true,
		ActualEntity: disease,
		Answer:       a.String(),
		Path:         path,
	}, nil
}
