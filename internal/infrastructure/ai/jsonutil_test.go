package ai

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSON(`Respuesta: {"a":{"b":2}} fin`))
	assert.Equal(t, "", extractJSON("sin json"))
}

func TestExplainLines(t *testing.T) {
	assert.Equal(t, []string{"uno"}, explainLines(json.RawMessage(`"uno"`)))
	assert.Equal(t, []string{"a", "2"}, explainLines(json.RawMessage(`["a",2]`)))
	assert.Nil(t, explainLines(json.RawMessage(`null`)))
	assert.Nil(t, explainLines(nil))
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "corto", truncate("corto", 10))

	// "ñ" ocupa dos bytes: cortar en el byte 2 partiría la runa.
	got := truncate("añejo", 2)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "a…", got)

	got = truncate("límite inválido", 2)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "l…", got)
}
