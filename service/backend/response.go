package backend

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
	"github.com/QuangTung97/marketing/service/marketing"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		otellib.Extract(r.Context()).Error("Failed to encode response", zap.Error(err))
	}
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, r, status, marketing.ErrorResponse{
		Error: marketing.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeError writes the error envelope of err, internal errors are logged and not exposed
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		otellib.Extract(r.Context()).Error("Internal error",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		message = "internal error"
	}
	writeErrorCode(w, r, status, code, message)
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid %s %q", name, raw)
	}
	return id, nil
}

// stringParam returns the unescaped path parameter
func stringParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	s, err := url.PathUnescape(raw)
	if err != nil {
		return "", validationError("invalid %s %q", name, raw)
	}
	return s, nil
}

func intQuery(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError("invalid %s %q", name, raw)
	}
	return n, nil
}

func pageParams(r *http.Request) (model.PageRequest, error) {
	q := r.URL.Query()
	page, err := intQuery(q, "page")
	if err != nil {
		return model.PageRequest{}, err
	}
	size, err := intQuery(q, "size")
	if err != nil {
		return model.PageRequest{}, err
	}
	return model.PageRequest{Page: page, Size: size}.Normalize(), nil
}

func timeQuery(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, validationError("invalid %s %q", name, raw)
	}
	return &t, nil
}

func decimalQuery(q url.Values, name string) (decimal.NullDecimal, error) {
	raw := q.Get(name)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, validationError("invalid %s %q", name, raw)
	}
	return decimal.NewNullDecimal(d), nil
}

func decodeBody(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return validationError("invalid request body: %v", err)
	}
	return nil
}
