package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "wellpulse/internal/errors"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct(t *testing.T) {
	m := newValidation(t)

	type filterRequest struct {
		Field string `json:"field" validate:"omitempty,fieldname"`
		From  string `json:"from" validate:"omitempty,iso8601"`
		To    string `json:"to" validate:"omitempty,iso8601"`
	}

	tests := []struct {
		name    string
		req     filterRequest
		wantErr bool
	}{
		{
			name: "valid filter",
			req:  filterRequest{Field: "North Rumaila", From: "2024-01-01", To: "2024-06-30"},
		},
		{
			name: "empty filter is valid",
			req:  filterRequest{},
		},
		{
			name:    "bad date",
			req:     filterRequest{From: "01/01/2024"},
			wantErr: true,
		},
		{
			name:    "bad field name",
			req:     filterRequest{Field: "field; DROP TABLE"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCustomValidators(t *testing.T) {
	m := newValidation(t)

	type dateOnly struct {
		Value string `validate:"iso8601"`
	}
	type fieldOnly struct {
		Value string `validate:"fieldname"`
	}
	type fileOnly struct {
		Value string `validate:"filename"`
	}

	assert.NoError(t, m.ValidateStruct(dateOnly{Value: "2025-03-14"}))
	assert.Error(t, m.ValidateStruct(dateOnly{Value: "2025-13-99"}))
	assert.Error(t, m.ValidateStruct(dateOnly{Value: "notadate"}))

	assert.NoError(t, m.ValidateStruct(fieldOnly{Value: "West Qurna-2"}))
	assert.Error(t, m.ValidateStruct(fieldOnly{Value: "bad/name"}))

	assert.NoError(t, m.ValidateStruct(fileOnly{Value: "report_20250314.pdf"}))
	assert.Error(t, m.ValidateStruct(fileOnly{Value: "../../etc/passwd"}))
	assert.Error(t, m.ValidateStruct(fileOnly{Value: "dir/file.pdf"}))
}

func TestValidateRequestRejectsInvalidJSON(t *testing.T) {
	m := newValidation(t)
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/reload", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRequestSkipsGET(t *testing.T) {
	m := newValidation(t)
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
