package existdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error with message",
			err: &Error{
				Op:  "CreateDocument",
				Err: ErrAlreadyExists,
				Msg: `document "poem1.xml" already exists in collection "texts"`,
			},
			expected: `CreateDocument: document "poem1.xml" already exists in collection "texts": document already exists`,
		},
		{
			name: "error without message",
			err: &Error{
				Op:  "GetDocument",
				Err: ErrNotFound,
			},
			expected: "GetDocument: document not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: "DeleteDocument", Err: ErrNotFound}

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInfrastructure))
}

func TestErrCollectionNotFound_SpecializesNotFound(t *testing.T) {
	err := &Error{Op: "ListDocuments", Err: ErrCollectionNotFound}

	// Generic not-found handling must also match the collection variant.
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 500, Body: "internal error"}
	assert.Equal(t, "store returned status 500: internal error", err.Error())

	bare := &StatusError{StatusCode: 404}
	assert.Equal(t, "store returned status 404", bare.Error())
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 404})

	assert.True(t, IsStatus(err, 404))
	assert.False(t, IsStatus(err, 500))
	assert.False(t, IsStatus(errors.New("plain"), 404))
}
