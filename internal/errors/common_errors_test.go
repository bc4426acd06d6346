package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without cause",
			err:      NewSchemaError("required column missing: oil_production_bbl", nil),
			expected: "[SCHEMA] required column missing: oil_production_bbl",
		},
		{
			name:     "error with cause",
			err:      NewDataFormatError("failed to parse CSV", fmt.Errorf("record on line 3: wrong number of fields")),
			expected: "[DATA_FORMAT] failed to parse CSV: record on line 3: wrong number of fields",
		},
		{
			name:     "fit error",
			err:      NewFitError("not enough rows to train", nil),
			expected: "[FIT] not enough rows to train",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := NewDataFormatError("failed to read input", cause)

	assert.Equal(t, cause, err.Unwrap())

	// wrapped further, errors.As still finds the AppError
	wrapped := fmt.Errorf("loading dataset: %w", err)
	assert.True(t, IsDataFormatError(wrapped))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewSchemaError("required column missing", nil).
		WithContext("column", "wellhead_pressure_psi").
		WithContext("file", "production.csv")

	require.NotNil(t, err.Context)
	assert.Equal(t, "wellhead_pressure_psi", err.Context["column"])
	assert.Equal(t, "production.csv", err.Context["file"])
}

func TestErrorTypePredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isDataFormat bool
		isSchema     bool
		isFit        bool
		isNotFound   bool
	}{
		{
			name:         "data format error",
			err:          NewDataFormatError("bad csv", nil),
			isDataFormat: true,
		},
		{
			name:     "schema error",
			err:      NewSchemaError("missing column", nil),
			isSchema: true,
		},
		{
			name:  "fit error",
			err:   NewFitError("degenerate training set", nil),
			isFit: true,
		},
		{
			name:       "not found error",
			err:        NewNotFoundError("cleaned dataset"),
			isNotFound: true,
		},
		{
			name: "plain error matches nothing",
			err:  fmt.Errorf("some error"),
		},
		{
			name: "nil error matches nothing",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isDataFormat, IsDataFormatError(tt.err))
			assert.Equal(t, tt.isSchema, IsSchemaError(tt.err))
			assert.Equal(t, tt.isFit, IsFitError(tt.err))
			assert.Equal(t, tt.isNotFound, IsNotFoundError(tt.err))
		})
	}
}

func TestConstructorTypes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected ErrorType
	}{
		{"data format", NewDataFormatError("m", nil), ErrTypeDataFormat},
		{"schema", NewSchemaError("m", nil), ErrTypeSchema},
		{"fit", NewFitError("m", nil), ErrTypeFit},
		{"storage", NewStorageError("m", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"not found", NewNotFoundError("thing"), ErrTypeNotFound},
		{"config", NewConfigError("m", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type)
		})
	}
}
