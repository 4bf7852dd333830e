// Package ids generates the identifiers used for battles, reviews and
// sessions.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Hex returns an 8-character lowercase hex string (4 random bytes).
func Hex() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("ids: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// Battle returns the id of a battle record completed at t, e.g.
// "battle_1718000000000".
func Battle(t time.Time) string {
	return fmt.Sprintf("battle_%d", t.UnixMilli())
}

// Review returns the id of a playground review recorded at t.
func Review(t time.Time) string {
	return fmt.Sprintf("review_%d", t.UnixMilli())
}

// Session returns a new random session id.
func Session() string {
	return uuid.NewString()
}
