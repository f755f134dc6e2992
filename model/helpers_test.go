package model

import (
	"strings"

	"github.com/google/uuid"
)

// rString returns a random string.
func rString() string {
	return uuid.NewString()
}

// rString1000 returns a random string of 1000 characters.
func rString1000() string {
	var b strings.Builder
	for b.Len() < 1000 {
		b.WriteString(uuid.NewString())
	}
	return b.String()[:1000]
}
