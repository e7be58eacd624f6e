package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/store"
)

var (
	errNotFoundRoute    = apperr.New(apperr.ErrCodeNotFound, "route not found")
	errMethodNotAllowed = apperr.New(apperr.ErrCodeInvalidInput, "method not allowed")
	errBodyTooLarge     = apperr.New(apperr.ErrCodeInvalidInput, "request body too large")
)

type errorResponse struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// classify maps err onto a status and response body. Errors without a
// code are reported as internal without leaking their text.
func classify(err error) (int, errorResponse) {
	code := apperr.GetCode(err)
	var msg string
	switch {
	case errors.Is(err, store.ErrNotFound):
		code, msg = apperr.ErrCodeMapNotFound, "map not found"
	case code == "":
		code, msg = apperr.ErrCodeInternal, "internal error"
	default:
		msg = apperr.UserMessage(err)
	}

	status := apperr.HTTPStatus(code)
	if errors.Is(err, errMethodNotAllowed) {
		status = http.StatusMethodNotAllowed
	}
	return status, errorResponse{Code: code, Message: msg}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	var rl *apperr.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	writeJSON(w, status, body)
}

// fail writes err and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := classify(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, err)
}

// readBody reads a size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

// decodeJSON decodes a size-limited request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) ([]byte, error) {
	data, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "request body is not valid JSON")
	}
	return data, nil
}
