package answer

import (
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// phrases holds the interchangeable renderings per question type.
// {0} is the subject and {1} the listed results; disease_do_food adds {2}
// for recipes, and the food_* types put the diseases in {0}.
var phrases = map[model.QuestionType][]string{
	model.DiseaseSymptom: {
		"🩺 {0}的常见症状包括：{1}",
		"📋 患有{0}时，通常会出现以下症状：{1}",
		"💊 {0}的主要临床表现有：{1}",
		"🔍 如果您患有{0}，可能会有这些症状：{1}",
	},
	model.SymptomDisease: {
		"🏥 出现{0}，可能与以下疾病有关：{1}",
		"⚠️ {0}可能是以下疾病的表现：{1}",
		"🔬 有{0}时，建议排查以下疾病：{1}",
	},
	model.DiseaseCause: {
		"🔍 {0}的可能病因包括：{1}",
		"📖 {0}通常由以下原因引起：{1}",
		"💡 导致{0}的常见原因有：{1}",
	},
	model.DiseasePrevent: {
		"🛡️ 预防{0}的措施包括：{1}",
		"💪 要预防{0}，建议：{1}",
		"✅ {0}的预防方法：{1}",
	},
	model.DiseaseLasttime: {
		"⏱️ {0}的治疗周期通常为：{1}",
		"📅 {0}一般需要治疗：{1}",
		"🕐 {0}的康复时间大约是：{1}",
	},
	model.DiseaseCureway: {
		"💊 {0}的治疗方法包括：{1}",
		"🏥 针对{0}，可以采取以下治疗方式：{1}",
		"✨ {0}常用的治疗方案有：{1}",
	},
	model.SymptomCureway: {
		"💊 出现{0}症状时，可以采取以下治疗方法：{1}",
		"🏥 针对{0}，建议的治疗方式包括：{1}",
		"✨ {0}的常用治疗方案：{1}",
	},
	model.DiseaseCureprob: {
		"📊 {0}的治愈率大约为：{1}（仅供参考）",
		"💯 {0}的治愈概率约为：{1}",
		"📈 根据统计，{0}的治愈率约为：{1}",
	},
	model.DiseaseEasyget: {
		"👥 {0}的易感人群包括：{1}",
		"⚠️ 以下人群更容易患{0}：{1}",
		"🎯 {0}好发于：{1}",
	},
	model.DiseaseDesc: {
		"📚 关于{0}：{1}",
		"💡 {0}简介：{1}",
		"📖 {0}是一种{1}",
	},
	model.DiseaseAcompany: {
		"⚠️ {0}可能伴随以下并发症：{1}",
		"🔗 {0}常见的并发症有：{1}",
		"❗ 患有{0}时，需警惕以下并发症：{1}",
	},
	model.DiseaseNotFood: {
		"🚫 患有{0}时应避免食用：{1}",
		"❌ {0}患者忌食：{1}",
		"⛔ 如果您有{0}，请不要吃：{1}",
	},
	model.DiseaseDoFood: {
		"✅ {0}患者宜食：{1}\n\n🍽️ 推荐食谱：{2}",
		"🥗 患有{0}时建议多吃：{1}\n\n👨‍🍳 推荐食谱：{2}",
		"💚 {0}患者可以多吃：{1}\n\n📋 食谱推荐：{2}",
	},
	model.FoodNotDisease: {
		"⚠️ 患有以下疾病的人不宜食用{1}：{0}",
		"🚫 {1}不适合以下疾病患者食用：{0}",
		"❌ 如果您有以下疾病，请避免吃{1}：{0}",
	},
	model.FoodDoDisease: {
		"✅ {1}适合以下疾病患者食用：{0}",
		"💚 患有以下疾病时可以多吃{1}：{0}",
		"🥗 {1}对以下疾病患者有益：{0}",
	},
	model.DiseaseDrug: {
		"💊 {0}常用药物包括：{1}",
		"💉 治疗{0}的药物有：{1}",
		"🏥 {0}患者常用的药品：{1}",
	},
	model.SymptomDrug: {
		"💊 出现{0}症状时，可以使用以下药物：{1}",
		"💉 针对{0}，建议的药物包括：{1}",
		"🏥 {0}的常用药品：{1}",
	},
	model.DrugDisease: {
		"💊 {0}主要用于治疗：{1}",
		"🏥 {0}可以治疗以下疾病：{1}",
		"📋 {0}的适应症包括：{1}",
	},
	model.DiseaseCheck: {
		"🔬 {0}的诊断检查项目包括：{1}",
		"🏥 怀疑{0}时，建议做以下检查：{1}",
		"📋 确诊{0}通常需要：{1}",
	},
	model.CheckDisease: {
		"🔬 {0}检查可以诊断以下疾病：{1}",
		"📋 通过{0}可以检查出：{1}",
		"🏥 {0}主要用于诊断：{1}",
	},
	model.DiseaseDepartment: {
		"🏥 {0}建议挂：{1}",
		"📋 {0}应该挂：{1}",
		"💡 患有{0}时，建议就诊：{1}",
	},
	model.DrugProducer: {
		"🏭 {0} 的生产厂家包括：{1}",
		"📦 {0}（药品）由以下厂家生产：{1}",
		"🔎 查询到 {0} 的生产厂商：{1}",
	},
	model.DrugDesc: {
		"💊 {0}：{1}",
	},
}

var fallbackPhrase = []string{"{0}: {1}"}

// Phrases returns the renderings for qt
func Phrases(qt model.QuestionType) []string {
	if p, ok := phrases[qt]; ok {
		return p
	}
	return fallbackPhrase
}

func fill(tmpl string, args ...string) string {
	pairs := make([]string, 0, len(args)*2)
	for i, a := range args {
		pairs = append(pairs, "{"+string(rune('0'+i))+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
