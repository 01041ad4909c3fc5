// Package rag grounds LLM answers in facts retrieved from the knowledge graph.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/model"
)

// DefaultLimit bounds the rows used per lookup
const DefaultLimit = 5

const (
	queryDiseaseKnowledge = `MATCH (d:Disease {name: $name})
OPTIONAL MATCH (d)-[:has_symptom]->(s:Symptom)
OPTIONAL MATCH (d)-[:common_drug]->(drug:Drug)
OPTIONAL MATCH (d)-[:do_eat]->(f:Food)
OPTIONAL MATCH (d)-[:need_check]->(c:Check)
OPTIONAL MATCH (d)-[:belongs_to]->(dept:Department)
WITH d,
     collect(DISTINCT s.name)[0..10] AS symptoms,
     collect(DISTINCT drug.name)[0..10] AS drugs,
     collect(DISTINCT f.name)[0..10] AS foods,
     collect(DISTINCT c.name)[0..10] AS checks,
     collect(DISTINCT dept.name)[0..5] AS departments
RETURN d.name AS name, d.desc AS desc, d.cause AS cause, d.prevent AS prevent,
       d.cure_way AS cure_way, symptoms, drugs, foods, checks, departments
LIMIT 1`

	querySymptomKnowledge = `MATCH (d:Disease)-[:has_symptom]->(s:Symptom {name: $name})
RETURN d.name AS disease LIMIT $limit`

	queryDrugKnowledge = `MATCH (d:Disease)-[:common_drug]->(drug:Drug {name: $name})
RETURN d.name AS disease LIMIT $limit`

	queryKeywordDiseases = `MATCH (d:Disease)
WHERE toLower(d.name) CONTAINS $kw OR toLower(d.desc) CONTAINS $kw
RETURN d.name AS name LIMIT $limit`

	queryKeywordDrugs = `MATCH (n:Drug)
WHERE toLower(n.name) CONTAINS $kw OR toLower(n.desc) CONTAINS $kw
RETURN n.name AS name LIMIT $limit`

	queryKeywordSymptoms = `MATCH (s:Symptom)
WHERE toLower(s.name) CONTAINS $kw
RETURN s.name AS name LIMIT $limit`
)

// Recognizer finds lexicon entities in text
type Recognizer interface {
	Recognize(text string) model.Entities
}

// Retriever collects graph facts about the entities of a question
type Retriever struct {
	client     graph.Client
	recognizer Recognizer
	limit      int
	logger     *zap.Logger
}

func NewRetriever(client graph.Client, recognizer Recognizer, limit int, logger *zap.Logger) *Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{
		client:     client,
		recognizer: recognizer,
		limit:      limit,
		logger:     logger.With(zap.String("component", "retriever")),
	}
}

// Retrieve returns knowledge text for the question. Entities default to those
// recognized in the question. Diseases, symptoms and drugs each contribute a
// section; with fewer than two sections a keyword search over node names adds
// one more. Failed lookups are skipped. The error is set only when every
// lookup failed.
func (r *Retriever) Retrieve(ctx context.Context, question string, entities model.Entities) (string, error) {
	if len(entities) == 0 && r.recognizer != nil {
		entities = r.recognizer.Recognize(question)
	}

	t := &tally{}
	var sections []string
	for _, e := range entities {
		var text string
		switch {
		case e.Types.Has(model.Disease):
			text = t.section(r.disease(ctx, e.Text))
		case e.Types.Has(model.Symptom):
			text = t.section(r.related(ctx, querySymptomKnowledge, e.Text, "症状「%s」可能相关的疾病: %s"))
		case e.Types.Has(model.Drug):
			text = t.section(r.related(ctx, queryDrugKnowledge, e.Text, "药品「%s」可用于治疗: %s"))
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	if len(sections) < 2 {
		keywords := entities.Texts()
		if len(entities) == 0 {
			keywords = []string{question}
		}
		for _, kw := range keywords {
			if text := t.section(r.keyword(ctx, kw)); text != "" {
				sections = append(sections, text)
				break
			}
		}
	}

	if len(sections) == 0 && t.attempts > 0 && t.failures == t.attempts {
		return "", fmt.Errorf("retrieve: %w", t.last)
	}
	return strings.Join(sections, "\n\n"), nil
}

// tally counts lookups so Retrieve can tell an empty graph from a failing one
type tally struct {
	attempts, failures int
	last               error
}

func (t *tally) section(text string, err error) string {
	t.attempts++
	if err != nil {
		t.failures++
		t.last = err
		return ""
	}
	return text
}

func (r *Retriever) disease(ctx context.Context, name string) (string, error) {
	rows, err := r.client.Run(ctx, queryDiseaseKnowledge, map[string]any{"name": name})
	if err != nil {
		r.logger.Warn("disease lookup failed", zap.String("disease", name), zap.Error(err))
		return "", err
	}
	if len(rows) == 0 || rows[0].String("name") == "" {
		return "", nil
	}
	row := rows[0]

	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("疾病名称", row.String("name"))
	add("疾病描述", row.String("desc"))
	add("病因", row.String("cause"))
	add("预防措施", row.String("prevent"))
	add("治疗方法", strings.Join(row.Strings("cure_way"), ", "))
	add("常见症状", strings.Join(row.Strings("symptoms"), ", "))
	add("常用药品", strings.Join(row.Strings("drugs"), ", "))
	add("推荐食物", strings.Join(row.Strings("foods"), ", "))
	add("检查项目", strings.Join(row.Strings("checks"), ", "))
	add("所属科室", strings.Join(row.Strings("departments"), ", "))
	return strings.Join(lines, "\n"), nil
}

func (r *Retriever) related(ctx context.Context, query, name, format string) (string, error) {
	rows, err := r.client.Run(ctx, query, map[string]any{"name": name, "limit": r.limit})
	if err != nil {
		r.logger.Warn("entity lookup failed", zap.String("entity", name), zap.Error(err))
		return "", err
	}
	diseases := graph.Column(rows, "disease")
	if len(diseases) == 0 {
		return "", nil
	}
	return fmt.Sprintf(format, name, strings.Join(diseases, ", ")), nil
}

// keyword matches node names (and descriptions) containing kw. It fails only
// when all three searches fail.
func (r *Retriever) keyword(ctx context.Context, kw string) (string, error) {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" {
		return "", nil
	}

	searches := []struct {
		query string
		label string
	}{
		{queryKeywordDiseases, "相关疾病"},
		{queryKeywordDrugs, "相关药品"},
		{queryKeywordSymptoms, "相关症状"},
	}

	var (
		lines []string
		errs  []error
	)
	for _, s := range searches {
		rows, err := r.client.Run(ctx, s.query, map[string]any{"kw": kw, "limit": r.limit})
		if err != nil {
			r.logger.Debug("keyword search failed", zap.String("label", s.label), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if names := graph.Column(rows, "name"); len(names) > 0 {
			lines = append(lines, s.label+": "+strings.Join(names, ", "))
		}
	}
	if len(errs) == len(searches) {
		return "", errors.Join(errs...)
	}
	return strings.Join(lines, "\n"), nil
}
