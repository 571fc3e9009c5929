package domain

import (
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

// APDULog is one command/response exchange observed between a POS
// terminal and an emulated card.
type APDULog struct {
	ID           int64     `json:"id"`
	DeviceID     string    `json:"device_id"`
	APDUCommand  string    `json:"apdu_command"`
	APDUResponse string    `json:"apdu_response"`
	Success      bool      `json:"success"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewAPDULog validates and normalises an exchange. A zero timestamp is
// replaced with the current UTC time.
func NewAPDULog(deviceID, command, response string, success bool, ts time.Time) (*APDULog, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidDeviceID
	}

	cmd, err := NormalizeAPDU(command)
	if err != nil || cmd == "" {
		return nil, ErrInvalidAPDU
	}
	rsp, err := NormalizeAPDU(response)
	if err != nil {
		return nil, ErrInvalidResponse
	}

	if ts.IsZero() {
		ts = time.Now()
	}

	return &APDULog{
		DeviceID:     deviceID,
		APDUCommand:  cmd,
		APDUResponse: rsp,
		Success:      success,
		Timestamp:    ts.UTC(),
	}, nil
}

// NormalizeAPDU strips whitespace and upper-cases a hex APDU. The empty
// string is valid (no response).
func NormalizeAPDU(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)

	if _, err := hex.DecodeString(cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}

// StatusWord returns the trailing SW1SW2 of a response, or "" when the
// response is shorter than two bytes.
func StatusWord(response string) string {
	if len(response) < 4 {
		return ""
	}
	return response[len(response)-4:]
}

// Combo is the text the classifier is trained on.
func (l *APDULog) Combo() string {
	return ComboText(l.APDUCommand, l.APDUResponse)
}

func ComboText(command, response string) string {
	return command + "|" + response
}
