// internal/scoring/encoder.go
package scoring

import "venture-risk-workers/internal/models"

// Field is one categorical question and its possible values in encoding order.
type Field struct {
	Key    string
	Values []string
}

// DefaultFields is the encoding the bundled classifier was trained against.
// Changing the order or the value lists changes the vector layout.
var DefaultFields = []Field{
	{Key: models.AnswerFundingStage, Values: []string{"pre-seed", "seed", "series-a"}},
	{Key: models.AnswerCompetition, Values: []string{"low", "medium", "high"}},
	{Key: models.AnswerTeamSize, Values: []string{"solo", "2", "3+"}},
	{Key: models.AnswerProductStage, Values: []string{"idea", "mvp", "growth"}},
}

// Encoder one-hot encodes questionnaire answers into a fixed-length vector.
type Encoder struct {
	fields []Field
	length int
}

func NewEncoder(fields []Field) *Encoder {
	length := 0
	copied := make([]Field, len(fields))
	for i, f := range fields {
		copied[i] = Field{Key: f.Key, Values: append([]string(nil), f.Values...)}
		length += len(f.Values)
	}
	return &Encoder{fields: copied, length: length}
}

// Len is the vector length produced by Encode.
func (e *Encoder) Len() int {
	return e.length
}

// Encode emits one slot per configured value. Missing or unknown answers
// leave that field's slots at zero.
func (e *Encoder) Encode(answers models.QuestionnaireAnswers) []float64 {
	vec := make([]float64, 0, e.length)
	for _, f := range e.fields {
		answer := answers.Get(f.Key)
		for _, v := range f.Values {
			if answer == v {
				vec = append(vec, 1)
			} else {
				vec = append(vec, 0)
			}
		}
	}
	return vec
}
