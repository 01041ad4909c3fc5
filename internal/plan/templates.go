package plan

import (
	"fmt"

	"github.com/ppiankov/medqa/internal/graph"
)

// Row field aliases shared by every template
const (
	FieldSubject    = "subject"
	FieldRelation   = "relation"
	FieldObject     = "object"
	FieldValue      = "value"
	FieldSymptom    = "symptom"
	FieldMatched    = "matched"
	FieldMatchCount = "match_count"
)

// Template is a parameterized Cypher query plus the row fields it returns.
// Single-entity templates bind $name; symptom-set templates bind $names.
type Template struct {
	Name   string
	Cypher string
	Fields []string
	Multi  bool
}

// Row is a decoded result record. Which fields are populated is given by the
// template's Fields list.
type Row struct {
	Subject    string
	Relation   string
	Object     string
	Symptom    string
	Values     []string
	Matched    []string
	MatchCount int
}

// Decode converts raw records into rows
func Decode(records []graph.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Subject:    r.String(FieldSubject),
			Relation:   r.String(FieldRelation),
			Object:     r.String(FieldObject),
			Symptom:    r.String(FieldSymptom),
			Values:     r.Strings(FieldValue),
			Matched:    r.Strings(FieldMatched),
			MatchCount: r.Int(FieldMatchCount),
		})
	}
	return rows
}

// diseaseAttr returns a template reading one Disease property.
// Fields: subject (disease), value (property; cure_way is a list).
func diseaseAttr(attr string) *Template {
	return &Template{
		Name:   "disease." + attr,
		Cypher: fmt.Sprintf("MATCH (m:Disease) WHERE m.name = $name RETURN m.name AS subject, m.%s AS value", attr),
		Fields: []string{FieldSubject, FieldValue},
	}
}

// fromDisease walks a relation outwards from the named disease.
// Fields: subject (disease), relation (edge type), object (neighbour).
func fromDisease(rel, label string) *Template {
	return &Template{
		Name:   rel,
		Cypher: fmt.Sprintf("MATCH (m:Disease)-[r:%s]->(n:%s) WHERE m.name = $name RETURN m.name AS subject, type(r) AS relation, n.name AS object", rel, label),
		Fields: []string{FieldSubject, FieldRelation, FieldObject},
	}
}

// toDisease walks a relation backwards from the named neighbour.
// Fields as fromDisease: subject is still the disease.
func toDisease(rel, label string) *Template {
	return &Template{
		Name:   rel + ".reverse",
		Cypher: fmt.Sprintf("MATCH (m:Disease)-[r:%s]->(n:%s) WHERE n.name = $name RETURN m.name AS subject, type(r) AS relation, n.name AS object", rel, label),
		Fields: []string{FieldSubject, FieldRelation, FieldObject},
	}
}

// symptomCandidates ranks diseases by how many of the given symptoms they
// carry, then by how few symptoms they have in total.
const symptomCandidates = `MATCH (m:Disease)-[:has_symptom]->(n:Symptom)
WHERE n.name IN $names
WITH m, count(n) AS match_count, collect(n.name) AS matched
MATCH (m)-[:has_symptom]->(other:Symptom)
WITH m, match_count, matched, count(other) AS total
ORDER BY match_count DESC, total ASC
LIMIT 8
`

var (
	DiseaseCause    = diseaseAttr("cause")
	DiseasePrevent  = diseaseAttr("prevent")
	DiseaseLasttime = diseaseAttr("cure_lasttime")
	DiseaseCureprob = diseaseAttr("cured_prob")
	DiseaseCureway  = diseaseAttr("cure_way")
	DiseaseEasyget  = diseaseAttr("easy_get")
	DiseaseDesc     = diseaseAttr("desc")

	DiseaseSymptom    = fromDisease("has_symptom", "Symptom")
	DiseaseAcompany   = fromDisease("acompany_with", "Disease")
	DiseaseNoEat      = fromDisease("no_eat", "Food")
	DiseaseDoEat      = fromDisease("do_eat", "Food")
	DiseaseRecipe     = fromDisease("recommand_eat", "Food")
	DiseaseCommonDrug = fromDisease("common_drug", "Drug")
	DiseaseRecDrug    = fromDisease("recommand_drug", "Drug")
	DiseaseCheck      = fromDisease("need_check", "Check")
	DiseaseDepartment = fromDisease("belongs_to", "Department")

	FoodNoEat      = toDisease("no_eat", "Food")
	FoodDoEat      = toDisease("do_eat", "Food")
	FoodRecipe     = toDisease("recommand_eat", "Food")
	DrugCommonFor  = toDisease("common_drug", "Drug")
	DrugRecFor     = toDisease("recommand_drug", "Drug")
	CheckDiagnoses = toDisease("need_check", "Check")

	// DiseaseAcompanyOf finds diseases listing the named one as a complication.
	// Fields: subject (the named disease), relation, object (the other disease).
	DiseaseAcompanyOf = &Template{
		Name:   "acompany_with.reverse",
		Cypher: "MATCH (m:Disease)-[r:acompany_with]->(n:Disease) WHERE n.name = $name RETURN n.name AS subject, type(r) AS relation, m.name AS object",
		Fields: []string{FieldSubject, FieldRelation, FieldObject},
	}

	// Fields: subject (disease), matched (symptoms hit), match_count
	SymptomDisease = &Template{
		Name:   "symptom.disease",
		Cypher: symptomCandidates + "RETURN m.name AS subject, matched, match_count",
		Fields: []string{FieldSubject, FieldMatched, FieldMatchCount},
		Multi:  true,
	}

	// Fields: subject (disease), value (cure_way list), matched, match_count
	SymptomCureway = &Template{
		Name:   "symptom.cureway",
		Cypher: symptomCandidates + "RETURN m.name AS subject, m.cure_way AS value, matched, match_count",
		Fields: []string{FieldSubject, FieldValue, FieldMatched, FieldMatchCount},
		Multi:  true,
	}

	// Fields: subject (disease), object (drug), symptom
	SymptomDrug = &Template{
		Name: "symptom.drug",
		Cypher: `MATCH (s:Symptom)<-[:has_symptom]-(d:Disease)-[:common_drug]->(drug:Drug)
WHERE s.name = $name
RETURN DISTINCT d.name AS subject, drug.name AS object, s.name AS symptom
LIMIT 5`,
		Fields: []string{FieldSubject, FieldObject, FieldSymptom},
	}

	// Fields: subject (drug), object (producer)
	DrugProducer = &Template{
		Name:   "drug.producer",
		Cypher: "MATCH (n:Drug)-[:produced_by]->(m:Producer) WHERE n.name = $name RETURN n.name AS subject, m.name AS object",
		Fields: []string{FieldSubject, FieldObject},
	}

	// Fields: subject (drug), value (description)
	DrugDesc = &Template{
		Name:   "drug.desc",
		Cypher: "MATCH (n:Drug) WHERE n.name = $name RETURN n.name AS subject, n.desc AS value",
		Fields: []string{FieldSubject, FieldValue},
	}
)
