package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrModelNotFound, ErrNotFound},
		{ErrVersionNotFound, ErrNotFound},
		{ErrModelNameConflict, ErrConflict},
		{ErrVersionConflict, ErrConflict},
		{ErrInvalidModelName, ErrValidation},
		{ErrInvalidMetadata, ErrValidation},
		{ErrCheckpointNotFound, ErrUnresolvable},
		{ErrCheckpointNotFound, ErrNotFound},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind, tc.err.Error())
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tc.err), tc.kind)
	}

	assert.NotErrorIs(t, ErrModelNotFound, ErrConflict)
	assert.NotErrorIs(t, ErrModelNotFound, ErrVersionNotFound)
}
