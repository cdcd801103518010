package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	_statusError = "error"

	// MaxBodyBytes bounds every JSON request body.
	MaxBodyBytes = 1 << 20
)

var ErrBodyNotObject = errors.New("request body must be a JSON object")

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func ReplyWithError(w http.ResponseWriter, statusCode int, errMsg string) {
	errResponse := &ErrorResponse{
		Status:  _statusError,
		Message: errMsg,
	}
	ReplyJSONResponse(w, statusCode, errResponse)
}

func ReplyJSONResponse(w http.ResponseWriter, statusCode int, output interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(output)
}

// DecodeJSONObject reads a body that must be a single JSON object. Numbers
// are kept as json.Number so integers round-trip unchanged.
func DecodeJSONObject(r *http.Request) (map[string]any, error) {
	reqBody, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(reqBody))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, ErrBodyNotObject
	}
	if decoder.More() {
		return nil, ErrBodyNotObject
	}

	object, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrBodyNotObject
	}

	return object, nil
}
