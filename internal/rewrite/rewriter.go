// Package rewrite turns colloquial questions into the standard phrasing the
// classifier keywords are written in.
package rewrite

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result describes one rewrite. Rules lists every rule that changed the text.
type Result struct {
	Original  string
	Rewritten string
	Rules     []string
}

// Changed reports whether the question text differs after rewriting
func (r Result) Changed() bool {
	return r.Original != r.Rewritten
}

const particles = "啊呢吧呀啦哦"

// partAliases map colloquial body parts onto the names used in symptom terms
var partAliases = map[string]string{
	"脑袋": "头", "脑壳": "头", "头脑": "头",
	"肚子": "腹", "小肚子": "腹",
	"嗓子": "咽喉", "喉咙": "咽喉",
	"后背": "背", "后腰": "腰",
	"胳膊": "手臂", "大腿": "腿", "小腿": "腿",
}

var bodyParts = []string{
	"头", "胸", "胃", "肚子", "腹", "腰", "背", "腿", "脚", "手", "眼", "耳", "鼻",
	"嗓子", "喉咙", "脖子", "肩", "膝盖", "关节", "心", "肺", "肝", "肾",
}

var verbs = map[string]string{
	"疼": "痛", "痛": "痛", "酸": "酸痛", "胀": "胀痛", "闷": "闷",
	"晕": "晕", "麻": "麻木", "痒": "瘙痒", "肿": "肿胀",
}

// discomforts name the symptom meant by "<part>不舒服"
var discomforts = map[string]string{
	"头": "头痛", "胸": "胸痛", "胃": "胃痛", "肚子": "腹痛",
	"腰": "腰痛", "背": "背痛", "腿": "腿痛", "嗓子": "咽喉痛",
	"眼": "眼痛", "心": "心悸", "肺": "呼吸困难",
}

const (
	modifiers = `老是|总是|经常|一直|有点|有些|好|很|特别|非常`
	verbClass = `[疼痛晕麻痒酸胀闷]`
)

// fixedSymptoms rewrite every occurrence of a colloquial phrase to a symptom
// term. Alternatives are tried left to right at each position.
var fixedSymptoms = [][2]string{
	{`浑身没劲|全身没劲|没有力气|没力气|乏力`, "乏力"},
	{`感觉很累|特别累|很疲惫|疲劳`, "疲劳"},
	{`老是犯困|总犯困|嗜睡`, "嗜睡"},
	{`睡不着觉?|晚上睡不好|睡眠不好|失眠`, "失眠"},
	{`喘不上气|呼吸不畅|喘不过气|呼吸困难`, "呼吸困难"},
	{`老是咳嗽|一直咳|咳个不停|咳嗽`, "咳嗽"},
	{`心跳很快|心跳加速|心慌|心悸`, "心悸"},
	{`血压有点高|血压偏高|血压高`, "高血压"},
	{`血糖有点高|血糖偏高|血糖高`, "糖尿病"},
	{`拉肚子|拉稀|腹泻`, "腹泻"},
	{`恶心想吐|想吐|恶心`, "恶心"},
	{`吃不下饭|没食欲|不想吃东西|食欲不振`, "食欲不振"},
	{`看不清东西|看不清|视力模糊|眼睛花|视力下降`, "视力下降"},
	{`听不清|耳鸣|听力下降`, "听力下降"},
	{`嗓子疼|喉咙疼|咽喉疼|咽喉痛`, "咽喉痛"},
	{`流鼻涕|鼻塞`, "鼻塞"},
	{`我发烧了|我发热了|我发烧|我发热|发烧了|发热了|发烧|发热|体温高`, "发热"},
	{`头痛|头疼|我头痛|我头疼`, "头痛"},
	{`头晕|我头晕|头好晕|头很晕`, "头晕"},
	{`胸闷|我胸闷|胸好闷|胸很闷|我胸好闷`, "胸闷"},
	{`胸痛|我胸痛|胸好痛|胸很痛|我胸好痛`, "胸痛"},
	{`腹痛|我腹痛|腹好痛|腹很痛|我腹好痛|肚子痛|我肚子痛`, "腹痛"},
	{`腰痛|我腰痛|腰好痛|腰很痛|我腰好痛`, "腰痛"},
	{`背痛|我背痛|背好痛|背很痛|我背好痛`, "背痛"},
	{`关节痛|我关节痛|关节好痛`, "关节痛"},
	{`胃痛|我胃痛|胃好痛|胃很痛|我胃好痛`, "胃痛"},
	{`恶心呕吐|想吐|呕吐`, "恶心"},
	{`体温升高`, "发热"},
	{`浑身无力`, "乏力"},
	{`不想吃|没胃口`, "食欲不振"},
}

// phrases rewrite question wording. Applied after symptom normalization.
var phrases = [][2]string{
	// drugs and treatment
	{"吃啥药", "用什么药"},
	{"吃什么药", "用什么药"},
	{"该吃啥", "应该吃什么"},
	{"能吃啥", "可以吃什么"},
	{"要吃啥", "应该吃什么"},
	{"咋治", "怎么治疗"},
	{"咋办", "怎么办"},
	{"咋整", "怎么治疗"},
	{"咋弄", "怎么治疗"},

	// symptoms
	{"啥症状", "什么症状"},
	{"有啥表现", "有什么症状"},
	{"啥表现", "什么症状"},
	{"会咋样", "会怎么样"},
	{"会咋", "会怎么样"},

	// causes
	{"咋回事", "是什么原因"},
	{"咋得的", "是什么原因导致的"},
	{"咋引起的", "是什么原因引起的"},
	{"为啥会", "为什么会"},
	{"咋会", "怎么会"},

	// food
	{"能吃不", "能吃吗"},
	{"能不能吃", "可以吃吗"},
	{"吃了会咋样", "吃了会怎么样"},
	{"忌口啥", "忌口什么"},
	{"不能吃啥", "不能吃什么"},
	{"注意啥", "注意什么"},

	// checks
	{"查啥", "检查什么"},
	{"做啥检查", "做什么检查"},
	{"要查啥", "需要检查什么"},

	// departments
	{"挂啥科", "挂什么科"},
	{"看啥科", "看什么科"},
	{"去哪个科", "挂什么科"},
	{"该找哪个科", "挂什么科"},

	{"是啥", "是什么"},
	{"有啥", "有什么"},
	{"咋样", "怎么样"},
	{"多久能好", "治疗周期多长"},
	{"能治好吗", "能治愈吗"},
	{"能根治吗", "能治愈吗"},
	{"严重吗", "严重程度如何"},
	{"要紧吗", "严重吗"},
	{"啥毛病", "什么病"},
	{"啥病", "什么病"},
}

// symptomRule rewrites the first match with build(submatches), or every
// match with literal when build is nil.
type symptomRule struct {
	re      *regexp.Regexp
	literal string
	build   func(groups []string) string
}

// Rewriter normalizes colloquial symptom descriptions and question phrasing.
// It is safe for concurrent use.
type Rewriter struct {
	symptoms []symptomRule
}

func New() *Rewriter {
	parts := alternation(bodyParts, keys(partAliases))

	bodyVerb := func(part, verb int) func([]string) string {
		return func(g []string) string {
			return normalizePart(g[part]) + verbs[g[verb]]
		}
	}

	rules := []symptomRule{
		{re: regexp.MustCompile(`我的?(` + parts + `)(?:` + modifiers + `)(` + verbClass + `)`), build: bodyVerb(1, 2)},
		{re: regexp.MustCompile(`(?:感觉|觉得)(` + parts + `)(?:` + modifiers + `)?(` + verbClass + `)`), build: bodyVerb(1, 2)},
		{re: regexp.MustCompile(`(` + parts + `)(?:` + modifiers + `)(` + verbClass + `)`), build: bodyVerb(1, 2)},
		{re: regexp.MustCompile(`(` + parts + `)(?:不太?舒服|难受)`), build: discomfort},
	}
	for _, f := range fixedSymptoms {
		rules = append(rules, symptomRule{re: regexp.MustCompile(f[0]), literal: f[1]})
	}
	return &Rewriter{symptoms: rules}
}

// Rewrite strips one trailing particle, normalizes symptom descriptions, then
// rewrites question phrasing. Each rule that changed the text is reported.
func (r *Rewriter) Rewrite(question string) Result {
	res := Result{Original: question}
	text := stripParticle(question)

	for _, rule := range r.symptoms {
		var next, term string
		if rule.build != nil {
			loc := rule.re.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			groups := make([]string, len(loc)/2)
			for i := range groups {
				if loc[2*i] >= 0 {
					groups[i] = text[loc[2*i]:loc[2*i+1]]
				}
			}
			term = rule.build(groups)
			next = text[:loc[0]] + term + text[loc[1]:]
		} else {
			term = rule.literal
			next = rule.re.ReplaceAllLiteralString(text, term)
		}
		if next != text {
			res.Rules = append(res.Rules, "症状识别: "+term)
			text = next
		}
	}

	for _, p := range phrases {
		if strings.Contains(text, p[0]) {
			text = strings.ReplaceAll(text, p[0], p[1])
			res.Rules = append(res.Rules, p[0]+" → "+p[1])
		}
	}

	res.Rewritten = text
	return res
}

func stripParticle(s string) string {
	r, size := utf8.DecodeLastRuneInString(s)
	if size > 0 && strings.ContainsRune(particles, r) {
		return s[:len(s)-size]
	}
	return s
}

func normalizePart(p string) string {
	if alias, ok := partAliases[p]; ok {
		return alias
	}
	return p
}

func discomfort(g []string) string {
	if s, ok := discomforts[g[1]]; ok {
		return s
	}
	return normalizePart(g[1]) + "痛"
}

// alternation builds a regexp alternation preferring longer words, so 小肚子
// wins over 肚子 at the same position.
func alternation(lists ...[]string) string {
	seen := make(map[string]bool)
	var words []string
	for _, list := range lists {
		for _, w := range list {
			if !seen[w] {
				seen[w] = true
				words = append(words, regexp.QuoteMeta(w))
			}
		}
	}
	sort.SliceStable(words, func(i, j int) bool {
		return utf8.RuneCountInString(words[i]) > utf8.RuneCountInString(words[j])
	})
	return strings.Join(words, "|")
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
