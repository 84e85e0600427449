package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	busy := errors.New("lock already held")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", NewValidationError("URL is required"), KindValidation},
		{"config", NewConfigError("missing"), KindConfig},
		{"extraction", NewExtractionError("no JSON detected"), KindExtraction},
		{"wrapped git", fmt.Errorf("commit: %w", NewGitError(busy)), KindGit},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	busy := errors.New("lock already held")
	err := NewGitError(busy)

	assert.Equal(t, "git: lock already held", err.Error())
	assert.ErrorIs(t, err, busy)
	assert.Equal(t, "invalid JSON: unexpected end of JSON input",
		NewExtractionError("invalid JSON: %s", "unexpected end of JSON input").Error())
}

func TestIsCallerFault(t *testing.T) {
	assert.True(t, IsCallerFault(NewValidationError("URL is required")))
	assert.False(t, IsCallerFault(NewConfigError("missing")))
	assert.False(t, IsCallerFault(nil))
}
