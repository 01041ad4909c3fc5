package model

// HopInfo describes a detected multi-hop question
type HopInfo struct {
	Type        string   `json:"type"`        // Reasoning template, e.g. disease_complication_symptom
	Entity      string   `json:"entity"`      // Captured subject with punctuation stripped
	Hops        []string `json:"hops"`        // Relations traversed in order, e.g. disease→complication
	Description string   `json:"description"` // Human-readable chain, e.g. 疾病→并发症→症状
}

// TraceStep records one executed hop. Sample holds a truncated list of results;
// Summary is used instead when the hop produced an aggregate.
type TraceStep struct {
	Step     int      `json:"step"`
	Action   string   `json:"action"`
	Query    string   `json:"query"`
	Relation string   `json:"relation"`
	Sample   []string `json:"sample,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// ReasoningResult is the outcome of executing a reasoning chain.
// When Success is false, Message names the subject that could not be resolved.
type ReasoningResult struct {
	Success      bool        `json:"success"`
	Entity       string      `json:"entity"`
	ActualEntity string      `json:"actual_entity,omitempty"`
	Message      string      `json:"message,omitempty"`
	Answer       string      `json:"answer,omitempty"`
	Path         []TraceStep `json:"path"`
	HopInfo      HopInfo     `json:"hop_info"`

	// Err is set when a later hop lost queries to a graph failure. The
	// answer is still usable but incomplete.
	Err error `json:"-"`
}

// DiseaseProfile aggregates everything the knowledge graph records for one disease
type DiseaseProfile struct {
	Disease       string   `json:"disease"`
	Symptoms      []string `json:"symptoms"`
	Drugs         []string `json:"drugs"`
	FoodsGood     []string `json:"foods_good"`
	FoodsBad      []string `json:"foods_bad"`
	Checks        []string `json:"checks"`
	Departments   []string `json:"departments"`
	Complications []string `json:"complications"`
	Prevention    string   `json:"prevention,omitempty"`
	Cause         string   `json:"cause,omitempty"`
}

// Diagnosis is one candidate disease for a symptom combination
type Diagnosis struct {
	Disease         string   `json:"disease"`
	MatchRate       int      `json:"match_rate"`       // Percentage of the user's symptoms this disease covers
	MatchedSymptoms []string `json:"matched_symptoms"` // User symptoms that matched
	RelatedSymptoms []string `json:"related_symptoms"` // Sample of graph symptoms that matched
}
