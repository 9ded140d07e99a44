package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Despensa-api/pkg/textnorm"
)

func TestKey_FoldsWidthAndCase(t *testing.T) {
	// "ＴＯＭＡＴＥ" en ancho completo
	assert.Equal(t, "tomate", textnorm.Key("  ＴＯＭＡＴＥ "))
	assert.Equal(t, textnorm.Key("Caf\u00e9"), textnorm.Key("Cafe\u0301"))
}

func TestContains(t *testing.T) {
	assert.True(t, textnorm.Contains("Leche entera", "LECHE"))
	assert.False(t, textnorm.Contains("Leche", "queso"))
}
