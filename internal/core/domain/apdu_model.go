package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type ModelStatus string

const (
	ModelStatusPending ModelStatus = "PENDING"
	ModelStatusReady   ModelStatus = "READY"
	ModelStatusFailed  ModelStatus = "FAILED"
)

func (s ModelStatus) IsValid() bool {
	return s == ModelStatusPending || s == ModelStatusReady || s == ModelStatusFailed
}

const MaxModelNameLen = 100

// Model names double as artifact file names and object keys.
var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateModelName rejects names that could not be used as a single
// path segment.
func ValidateModelName(name string) error {
	if len(name) > MaxModelNameLen || !modelNamePattern.MatchString(name) {
		return ErrInvalidModelName
	}
	if name == "." || name == ".." {
		return ErrInvalidModelName
	}
	return nil
}

// APDUModel is one training run of the APDU success classifier.
type APDUModel struct {
	ID          uuid.UUID   `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Name        string      `json:"name"`
	Status      ModelStatus `json:"status"`
	IsDefault   bool        `json:"is_default"`
	URI         string      `json:"uri"`
	SampleCount int         `json:"sample_count"`
	Accuracy    float64     `json:"accuracy"`
	NEstimators int         `json:"n_estimators"`
	Error       string      `json:"error,omitempty"`
}

// NewAPDUModel creates a PENDING run. An empty name becomes
// apdu-<UTC timestamp>.
func NewAPDUModel(name string, nEstimators int, now time.Time) (*APDUModel, error) {
	if name == "" {
		name = DefaultModelName(now)
	}
	if err := ValidateModelName(name); err != nil {
		return nil, err
	}

	return &APDUModel{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        name,
		Status:      ModelStatusPending,
		NEstimators: nEstimators,
	}, nil
}

func DefaultModelName(now time.Time) string {
	return fmt.Sprintf("apdu-%s", now.UTC().Format("20060102T150405.000Z"))
}

// MarkReady records a successful run.
func (m *APDUModel) MarkReady(uri string, samples int, accuracy float64, now time.Time) {
	m.Status = ModelStatusReady
	m.URI = uri
	m.SampleCount = samples
	m.Accuracy = accuracy
	m.Error = ""
	m.UpdatedAt = now
}

// MarkFailed records a failed run. Failed runs are never default.
func (m *APDUModel) MarkFailed(err error, now time.Time) {
	m.Status = ModelStatusFailed
	m.IsDefault = false
	if err != nil {
		m.Error = err.Error()
	}
	m.UpdatedAt = now
}

// Prediction is the classifier verdict for one exchange.
type Prediction struct {
	ModelID            uuid.UUID `json:"model_id"`
	SuccessProbability float64   `json:"success_probability"`
	PredictedSuccess   bool      `json:"predicted_success"`
}
