// Package identifiers defines the language-identification collaborator
// contract used by the pipeline, plus a default implementation backed by
// the lingua detector.
package identifiers

// Identification is one classifier prediction for a piece of text.
type Identification struct {
	Label string  `avro:"label" json:"label"`
	Prob  float32 `avro:"prob" json:"prob"`
}

// Classifier predicts the language of a single line of text.
//
// Predict returns nil when no language could be identified; an error is
// treated the same way by callers. Implementations must be safe for
// concurrent use from multiple workers. The pipeline applies no timeout
// around Predict: a hung implementation blocks its worker.
type Classifier interface {
	Predict(text string) (*Identification, error)
}

// thresholded drops predictions whose confidence is below a minimum.
type thresholded struct {
	cls Classifier
	min float32
}

// Threshold wraps cls so that predictions with probability below min are
// reported as no prediction.
func Threshold(cls Classifier, min float32) Classifier {
	return &thresholded{cls: cls, min: min}
}

func (t *thresholded) Predict(text string) (*Identification, error) {
	id, err := t.cls.Predict(text)
	if err != nil || id == nil {
		return nil, err
	}
	if id.Prob < t.min {
		return nil, nil
	}
	return id, nil
}
