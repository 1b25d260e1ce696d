package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("game_index", "must be at least 0", -1)

	assert.Equal(t, "game_index", err.Field)
	assert.Equal(t, "must be at least 0", err.Message)
	assert.Equal(t, -1, err.Value)
	assert.Equal(t, "validation error on field 'game_index': must be at least 0", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("answer", "is required", nil))
	assert.Equal(t, "validation failed: answer is required", errs.Error())

	errs = append(errs, *NewValidationError("score", "must be at least 0", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestToValidationErrors(t *testing.T) {
	type result struct {
		Score int    `validate:"min=0"`
		Total int    `validate:"gtefield=Score"`
		Kind  string `validate:"required"`
	}

	err := validator.New().Struct(result{Score: 3, Total: 2})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "Total", errs[0].Field)
	assert.Equal(t, "gtefield", errs[0].Rule)
	assert.Equal(t, "must be greater than or equal to Score", errs[0].Message)
	assert.Equal(t, "Kind", errs[1].Field)
	assert.Equal(t, "is required", errs[1].Message)

	t.Run("unlisted rule falls back to the tag name", func(t *testing.T) {
		type card struct {
			Word string `validate:"alpha"`
		}
		errs := ToValidationErrors(validator.New().Struct(card{Word: "b3id"}))
		require.Len(t, errs, 1)
		assert.Equal(t, "validation failed for rule 'alpha'", errs[0].Message)
	})

	t.Run("non validator error", func(t *testing.T) {
		assert.Empty(t, ToValidationErrors(assert.AnError))
	})
}
