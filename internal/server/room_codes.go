package server

import (
	"errors"
	"math/rand"
	"strings"
)

// GenerateRoomCode produces the 4-letter identifier reported in lobby_state.
// One room per process, so uniqueness is not a concern.
func GenerateRoomCode() string {
	code := make([]byte, 4)
	for i := range code {
		code[i] = 'A' + byte(rand.Intn(26))
	}
	return string(code)
}

func ValidateRoomCode(code string) error {
	if len(code) != 4 {
		return errors.New("Room code must be exactly 4 characters")
	}
	for _, ch := range strings.ToUpper(code) {
		if ch < 'A' || ch > 'Z' {
			return errors.New("Room code must contain only letters A-Z")
		}
	}
	return nil
}
