package domain

import "errors"

// ============================================================================
// Card Errors
// ============================================================================

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrInvalidCardID     = errors.New("card id must be a positive integer")
	ErrInvalidHolderName = errors.New("holder_name is required and must be at most 128 characters")
	ErrInvalidPAN        = errors.New("pan must be 1-16 digits")
	ErrInvalidExpiry     = errors.New("expiry must be a date in YYYY-MM-DD format")
	ErrInvalidCVV        = errors.New("cvv must be between 0 and 9999")
	ErrInvalidIssuerID   = errors.New("issuer_id is required and must be at most 6 characters")
	ErrInvalidTrack      = errors.New("track is required and must be at most 4 characters")
	ErrInvalidAmount     = errors.New("amount must be between 0 and 99999999.99")
)

// ============================================================================
// APDU Errors
// ============================================================================

var (
	ErrInvalidDeviceID = errors.New("device_id is required")
	ErrInvalidAPDU     = errors.New("apdu must be a non-empty even-length hex string")
	ErrInvalidResponse = errors.New("apdu response must be an even-length hex string")
)

// ============================================================================
// Classifier Model Errors
// ============================================================================

// Not found errors
var (
	ErrModelNotFound   = errors.New("apdu model not found")
	ErrNoDefaultModel  = errors.New("no trained apdu model is available")
	ErrArtifactMissing = errors.New("model artifact not found")
)

// Conflict errors
var (
	ErrModelNameConflict = errors.New("apdu model with this name already exists")
	ErrModelNotReady     = errors.New("apdu model is not ready")
)

// Business rule errors
var (
	ErrInsufficientTrainingData = errors.New("not enough apdu logs to train: need the minimum sample count and both outcomes")
	ErrInvalidModelName         = errors.New("model name must be 1-100 letters, digits, '.', '_' or '-'")
)
