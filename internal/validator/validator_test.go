package validator

import (
	"testing"

	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startRequest struct {
	Script models.ScriptMode `json:"script" validate:"omitempty,script_mode"`
	Answer string            `json:"answer" validate:"required"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, v.Validate(&startRequest{Script: models.ScriptLatin, Answer: "salam"}))
		assert.NoError(t, v.Validate(&startRequest{Answer: "salam"}))
	})

	t.Run("unknown script uses json names and custom message", func(t *testing.T) {
		err := v.Validate(&startRequest{Script: "cyrillic", Answer: "salam"})
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, "script", errs[0].Field)
		assert.Equal(t, "script_mode", errs[0].Rule)
		assert.Equal(t, "must be arabic, latin, or hybrid", errs[0].Message)
	})

	t.Run("missing answer", func(t *testing.T) {
		var errs ValidationErrors
		require.ErrorAs(t, v.Validate(&startRequest{}), &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, "answer", errs[0].Field)
		assert.Equal(t, "is required", errs[0].Message)
	})
}
