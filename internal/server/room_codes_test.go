package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		assert.Len(t, code, 4)
		assert.NoError(t, ValidateRoomCode(code))
	}
}

func TestValidateRoomCode(t *testing.T) {
	assert.NoError(t, ValidateRoomCode("ABCD"))
	assert.NoError(t, ValidateRoomCode("abcd"))
	assert.Error(t, ValidateRoomCode("ABC"))
	assert.Error(t, ValidateRoomCode("ABCDE"))
	assert.Error(t, ValidateRoomCode("AB1D"))
}
