package dto

import (
	"time"

	"github.com/google/uuid"

	"pos-nfc-api/internal/core/domain"
)

type LogAPDURequest struct {
	DeviceID     string     `json:"device_id" binding:"required,max=64"`
	APDUCommand  string     `json:"apdu_command" binding:"required"`
	APDUResponse string     `json:"apdu_response"`
	Success      *bool      `json:"success" binding:"required"`
	Timestamp    *time.Time `json:"timestamp"`
}

type APDULogResponse struct {
	ID           int64  `json:"id"`
	DeviceID     string `json:"device_id"`
	APDUCommand  string `json:"apdu_command"`
	APDUResponse string `json:"apdu_response"`
	StatusWord   string `json:"status_word,omitempty"`
	Success      bool   `json:"success"`
	Timestamp    string `json:"timestamp"`
}

type ListAPDULogsResponse struct {
	Items      []APDULogResponse `json:"items"`
	Total      int               `json:"total"`
	PageSize   int               `json:"page_size"`
	NextOffset int               `json:"next_offset"`
}

func ToAPDULogResponse(l *domain.APDULog) APDULogResponse {
	return APDULogResponse{
		ID:           l.ID,
		DeviceID:     l.DeviceID,
		APDUCommand:  l.APDUCommand,
		APDUResponse: l.APDUResponse,
		StatusWord:   domain.StatusWord(l.APDUResponse),
		Success:      l.Success,
		Timestamp:    l.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

type TrainModelRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Trees    int    `json:"n_estimators" binding:"min=0,max=1000"`
	MaxDepth int    `json:"max_depth" binding:"min=0,max=64"`
	Seed     *int64 `json:"seed"`
}

type APDUModelResponse struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	IsDefault   bool      `json:"is_default"`
	URI         string    `json:"uri,omitempty"`
	SampleCount int       `json:"sample_count"`
	Accuracy    float64   `json:"accuracy"`
	NEstimators int       `json:"n_estimators"`
	Error       string    `json:"error,omitempty"`
}

type ListAPDUModelsResponse struct {
	Items      []APDUModelResponse `json:"items"`
	Total      int                 `json:"total"`
	PageSize   int                 `json:"page_size"`
	NextOffset int                 `json:"next_offset"`
}

func ToAPDUModelResponse(m *domain.APDUModel) APDUModelResponse {
	return APDUModelResponse{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.UTC().Format(time.RFC3339),
		Name:        m.Name,
		Status:      string(m.Status),
		IsDefault:   m.IsDefault,
		URI:         m.URI,
		SampleCount: m.SampleCount,
		Accuracy:    m.Accuracy,
		NEstimators: m.NEstimators,
		Error:       m.Error,
	}
}

type PredictRequest struct {
	APDUCommand  string `json:"apdu_command" binding:"required"`
	APDUResponse string `json:"apdu_response"`
}

type PredictResponse struct {
	ModelID            uuid.UUID `json:"model_id"`
	SuccessProbability float64   `json:"success_probability"`
	PredictedSuccess   bool      `json:"predicted_success"`
}

func ToPredictResponse(p *domain.Prediction) PredictResponse {
	return PredictResponse{
		ModelID:            p.ModelID,
		SuccessProbability: p.SuccessProbability,
		PredictedSuccess:   p.PredictedSuccess,
	}
}
