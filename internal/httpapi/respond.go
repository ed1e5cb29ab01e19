package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Response is the single envelope every endpoint answers with.
type Response struct {
	Timestamp time.Time     `json:"timestamp"`
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Data      any           `json:"data,omitempty"`
	Error     *ErrorDetails `json:"error,omitempty"`
}

type ErrorDetails struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Response{
		Timestamp: time.Now().UTC(),
		Success:   true,
		Data:      data,
	})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusOK, Response{
		Timestamp: time.Now().UTC(),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Response{
		Timestamp: time.Now().UTC(),
		Success:   false,
		Message:   message,
		Error:     &ErrorDetails{Code: code},
	})
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

// DecodeJSON reads a request body into dst. An empty body is not an
// error when allowEmpty is set (the logout body is optional).
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
