package model

// QuestionType identifies which graph relation(s) answer a classified question
type QuestionType string

const (
	DiseaseSymptom    QuestionType = "disease_symptom"
	SymptomDisease    QuestionType = "symptom_disease"
	DiseaseCause      QuestionType = "disease_cause"
	DiseaseAcompany   QuestionType = "disease_acompany"
	DiseaseNotFood    QuestionType = "disease_not_food"
	DiseaseDoFood     QuestionType = "disease_do_food"
	FoodNotDisease    QuestionType = "food_not_disease"
	FoodDoDisease     QuestionType = "food_do_disease"
	DiseaseDrug       QuestionType = "disease_drug"
	DrugDisease       QuestionType = "drug_disease"
	DiseaseCheck      QuestionType = "disease_check"
	CheckDisease      QuestionType = "check_disease"
	DiseasePrevent    QuestionType = "disease_prevent"
	DiseaseLasttime   QuestionType = "disease_lasttime"
	DiseaseCureway    QuestionType = "disease_cureway"
	DiseaseCureprob   QuestionType = "disease_cureprob"
	DiseaseEasyget    QuestionType = "disease_easyget"
	DiseaseDepartment QuestionType = "disease_department"
	DiseaseDesc       QuestionType = "disease_desc"
	DrugDesc          QuestionType = "drug_desc"
	DrugProducer      QuestionType = "drug_producer"
	SymptomCureway    QuestionType = "symptom_cureway"
	SymptomDrug       QuestionType = "symptom_drug"
)

// Classification is the result of intent classification.
// An empty Entities list means the question could not be classified.
type Classification struct {
	Entities      Entities       `json:"entities"`
	QuestionTypes []QuestionType `json:"question_types"`
}

// Empty reports whether no entity was recognized
func (c Classification) Empty() bool {
	return len(c.Entities) == 0
}

func (c Classification) Has(qt QuestionType) bool {
	for _, t := range c.QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}
