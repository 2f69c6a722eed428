package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ChapterPrompt(t *testing.T) {
	tmpl, err := Get("generation.json", "chapter")
	require.NoError(t, err)
	assert.Contains(t, tmpl, "{{.Guideline}}")
	assert.Contains(t, tmpl, "{{.Encoding}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("generation.json", "nope")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "chapter")
	assert.Error(t, err)
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() { MustGet("missing.json", "chapter") })
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, born {{.Birth}}", map[string]string{
		"Name":  "민지",
		"Birth": "1992-04-03",
	})
	assert.Equal(t, "Hello 민지, born 1992-04-03", out)
}

func TestFormat_MissingKeyLeftIntact(t *testing.T) {
	out := Format("{{.Name}} and {{.Other}}", map[string]string{"Name": "민지"})
	assert.Equal(t, "민지 and {{.Other}}", out)
}
