// Package classifier predicts whether an APDU exchange succeeded from the
// character n-grams of its command and response.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMinN = 1
	DefaultMaxN = 2

	artifactFormat = "posnfc-apdu-rf/v1"
)

var ErrNotEnoughData = errors.New("training data must contain both outcomes")

// Model bundles the fitted vectorizer with its forest, like the
// (vectorizer, model) pair the training job persists.
type Model struct {
	Format     string      `json:"format"`
	TrainedAt  time.Time   `json:"trained_at"`
	Vectorizer *Vectorizer `json:"vectorizer"`
	Forest     *Forest     `json:"forest"`
}

// Report summarises a training run.
type Report struct {
	Samples     int     `json:"samples"`
	Positives   int     `json:"positives"`
	Features    int     `json:"features"`
	Trees       int     `json:"trees"`
	OOBAccuracy float64 `json:"oob_accuracy"`
}

// Train fits a model on combo documents and their outcomes.
func Train(ctx context.Context, docs []string, labels []bool, params ForestParams) (*Model, Report, error) {
	if len(docs) != len(labels) {
		return nil, Report{}, fmt.Errorf("docs and labels differ in length: %d != %d", len(docs), len(labels))
	}

	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return nil, Report{}, ErrNotEnoughData
	}

	vec := NewVectorizer(DefaultMinN, DefaultMaxN)
	X := vec.FitTransform(docs)

	forest, acc, err := FitForest(ctx, X, labels, vec.NumFeatures(), params)
	if err != nil {
		return nil, Report{}, fmt.Errorf("fit forest: %w", err)
	}

	m := &Model{
		Format:     artifactFormat,
		TrainedAt:  time.Now().UTC(),
		Vectorizer: vec,
		Forest:     forest,
	}
	return m, Report{
		Samples:     len(docs),
		Positives:   positives,
		Features:    vec.NumFeatures(),
		Trees:       len(forest.Trees),
		OOBAccuracy: acc,
	}, nil
}

// Predict returns the probability that doc describes a successful exchange.
func (m *Model) Predict(doc string) float64 {
	return m.Forest.PredictProba(m.Vectorizer.Transform(doc))
}

func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if m.Format != artifactFormat {
		return nil, fmt.Errorf("unsupported model artifact format %q", m.Format)
	}
	if m.Vectorizer == nil || m.Forest == nil || len(m.Forest.Trees) == 0 {
		return nil, errors.New("model artifact is incomplete")
	}
	if m.Forest.NumFeatures != m.Vectorizer.NumFeatures() {
		return nil, fmt.Errorf("model artifact has %d forest features but %d vocabulary entries",
			m.Forest.NumFeatures, m.Vectorizer.NumFeatures())
	}
	for i, t := range m.Forest.Trees {
		if err := t.validate(m.Forest.NumFeatures); err != nil {
			return nil, fmt.Errorf("model artifact tree %d: %w", i, err)
		}
	}
	return &m, nil
}
