package reason

// Every list query returns a single "name" column and binds $name and $limit
const (
	queryExactDisease = `MATCH (d:Disease) WHERE d.name = $name RETURN d.name AS name LIMIT 1`

	queryDiseaseCandidates = `MATCH (d:Disease) WHERE d.name CONTAINS $name
RETURN d.name AS name
ORDER BY abs(size(d.name) - size($name)), d.name
LIMIT $limit`

	queryComplications = `MATCH (d:Disease)-[:acompany_with]->(c:Disease) WHERE d.name = $name RETURN c.name AS name LIMIT $limit`
	querySymptoms      = `MATCH (d:Disease)-[:has_symptom]->(s:Symptom) WHERE d.name = $name RETURN s.name AS name LIMIT $limit`
	queryDrugs         = `MATCH (d:Disease)-[:common_drug|recommand_drug]->(dr:Drug) WHERE d.name = $name RETURN dr.name AS name LIMIT $limit`
	queryGoodFoods     = `MATCH (d:Disease)-[:do_eat|recommand_eat]->(f:Food) WHERE d.name = $name RETURN f.name AS name LIMIT $limit`
	queryBadFoods      = `MATCH (d:Disease)-[:no_eat]->(f:Food) WHERE d.name = $name RETURN f.name AS name LIMIT $limit`
	queryChecks        = `MATCH (d:Disease)-[:need_check]->(c:Check) WHERE d.name = $name RETURN c.name AS name LIMIT $limit`
	queryDepartments   = `MATCH (d:Disease)-[:belongs_to]->(dep:Department) WHERE d.name = $name RETURN dep.name AS name LIMIT $limit`

	// Returns prevent and cause
	queryProperties = `MATCH (d:Disease) WHERE d.name = $name RETURN d.prevent AS prevent, d.cause AS cause LIMIT 1`

	// Returns disease and the matched symptom
	querySymptomDiseases = `MATCH (d:Disease)-[:has_symptom]->(s:Symptom) WHERE s.name CONTAINS $name
RETURN d.name AS disease, s.name AS symptom
LIMIT $limit`
)

// Result caps per hop
const (
	limitCandidates          = 5
	limitComplicationsChain  = 8
	limitComplicationsSymp   = 10
	limitComplicationsPlain  = 20
	limitSymptomDiseases     = 8
	limitPerEntity           = 5
	limitDepartmentsPerEntry = 3
	limitCompoundDrugs       = 10
	limitCompoundDepartments = 5
)
