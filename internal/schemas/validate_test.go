package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChapterContent_Valid(t *testing.T) {
	err := ValidateChapterContent(`{"title": "총운", "body": "올해의 흐름은..."}`)
	assert.NoError(t, err)
}

func TestValidateChapterContent_BodyOnly(t *testing.T) {
	err := ValidateChapterContent(`{"body": "content"}`)
	assert.NoError(t, err)
}

func TestValidateChapterContent_MissingBody(t *testing.T) {
	err := ValidateChapterContent(`{"title": "no body"}`)
	assert.Error(t, err)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateChapterContent_EmptyBody(t *testing.T) {
	err := ValidateChapterContent(`{"body": ""}`)
	assert.Error(t, err)
}

func TestValidateChapterContent_UnknownField(t *testing.T) {
	err := ValidateChapterContent(`{"body": "x", "tone": "warm"}`)
	assert.Error(t, err)
}

func TestValidateChapterContent_NotJSON(t *testing.T) {
	err := ValidateChapterContent(`plain prose, not json`)
	assert.Error(t, err)
}
