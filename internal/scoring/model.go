// internal/scoring/model.go
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"venture-risk-workers/internal/models"
)

// ModelOutputs is the number of scores the classifier must emit, read in the
// order financial, market, team, product.
const ModelOutputs = 4

const classifierSchema = `{
  "type": "object",
  "required": ["inputSize", "outputs", "layers"],
  "properties": {
    "inputSize": {"type": "integer", "minimum": 1},
    "outputs": {"type": "integer", "minimum": 1},
    "layers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["weights", "biases", "activation"],
        "properties": {
          "weights": {"type": "array", "minItems": 1, "items": {"type": "array", "items": {"type": "number"}}},
          "biases": {"type": "array", "items": {"type": "number"}},
          "activation": {"type": "string", "enum": ["relu", "sigmoid", "tanh", "linear"]}
        }
      }
    }
  }
}`

// Layer is a dense layer; Weights is [outputs][inputs].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// Classifier is a small pretrained feed-forward network. It is read-only once
// loaded and safe for concurrent use.
type Classifier struct {
	InputSize int     `json:"inputSize"`
	Outputs   int     `json:"outputs"`
	Layers    []Layer `json:"layers"`
}

// LoadClassifier reads and validates a classifier artifact. Any failure is
// reported as ErrModelUnavailable.
func LoadClassifier(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact: %v", ErrModelUnavailable, err)
	}
	return ParseClassifier(raw)
}

func ParseClassifier(raw []byte) (*Classifier, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(classifierSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: validate artifact: %v", ErrModelUnavailable, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: artifact schema: %v", ErrModelUnavailable, errs)
	}

	var c Classifier
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %v", ErrModelUnavailable, err)
	}
	if err := c.checkLayers(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return &c, nil
}

func (c *Classifier) checkLayers() error {
	width := c.InputSize
	for i, l := range c.Layers {
		if len(l.Weights) != len(l.Biases) {
			return fmt.Errorf("layer %d: %d weight rows but %d biases", i, len(l.Weights), len(l.Biases))
		}
		for j, row := range l.Weights {
			if len(row) != width {
				return fmt.Errorf("layer %d row %d: expected %d inputs, got %d", i, j, width, len(row))
			}
		}
		width = len(l.Biases)
	}
	if width != c.Outputs {
		return fmt.Errorf("final layer emits %d values, artifact declares %d", width, c.Outputs)
	}
	return nil
}

// Predict runs the forward pass.
func (c *Classifier) Predict(input []float64) ([]float64, error) {
	if len(input) != c.InputSize {
		return nil, fmt.Errorf("%w: input has %d features, classifier expects %d", ErrModelShapeMismatch, len(input), c.InputSize)
	}
	x := input
	for _, l := range c.Layers {
		out := make([]float64, len(l.Biases))
		for j, row := range l.Weights {
			sum := l.Biases[j]
			for i, w := range row {
				sum += w * x[i]
			}
			out[j] = activate(l.Activation, sum)
		}
		x = out
	}
	return x, nil
}

func activate(name string, v float64) float64 {
	switch name {
	case "relu":
		return math.Max(0, v)
	case "sigmoid":
		return 1 / (1 + math.Exp(-v))
	case "tanh":
		return math.Tanh(v)
	default:
		return v
	}
}

// ModelScorer feeds the encoded answers into the classifier.
type ModelScorer struct {
	encoder    *Encoder
	classifier *Classifier
}

// NewModelScorer checks the encoder/classifier contract. A mismatch is a
// configuration error and must stop startup.
func NewModelScorer(encoder *Encoder, classifier *Classifier) (*ModelScorer, error) {
	if encoder.Len() != classifier.InputSize {
		return nil, fmt.Errorf("%w: encoder produces %d features, classifier expects %d",
			ErrModelShapeMismatch, encoder.Len(), classifier.InputSize)
	}
	if classifier.Outputs != ModelOutputs {
		return nil, fmt.Errorf("%w: classifier emits %d scores, expected %d",
			ErrModelShapeMismatch, classifier.Outputs, ModelOutputs)
	}
	return &ModelScorer{encoder: encoder, classifier: classifier}, nil
}

func (m *ModelScorer) Name() string {
	return StrategyModel
}

func (m *ModelScorer) Score(_ context.Context, answers models.QuestionnaireAnswers) (CategoryScores, error) {
	out, err := m.classifier.Predict(m.encoder.Encode(answers.Canonical()))
	if err != nil {
		return CategoryScores{}, err
	}
	return fromFractions(out[0], out[1], out[2], out[3]), nil
}
