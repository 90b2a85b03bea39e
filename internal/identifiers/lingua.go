package identifiers

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Lingua is a Classifier backed by the lingua language detector.
// The detector is immutable after construction and safe for concurrent use.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua builds a detector over every language lingua ships models for.
// Construction loads the language models and is expensive; build once and
// share the instance across workers.
func NewLingua() *Lingua {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &Lingua{detector: detector}
}

// Predict implements Classifier. Labels are lowercase ISO 639-1 codes.
func (l *Lingua) Predict(text string) (*Identification, error) {
	language, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return nil, nil
	}

	confidence := l.detector.ComputeLanguageConfidence(text, language)
	label := strings.ToLower(language.IsoCode639_1().String())

	return &Identification{
		Label: label,
		Prob:  float32(confidence),
	}, nil
}
