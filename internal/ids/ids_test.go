package ids

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHexLength(t *testing.T) {
	got := Hex()
	if len(got) != 8 {
		t.Fatalf("len(Hex()) = %d, want 8", len(got))
	}
	if strings.Trim(got, "0123456789abcdef") != "" {
		t.Fatalf("Hex() = %q, want lowercase hex", got)
	}
}

func TestBattleAndReviewUseUnixMillis(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	if got := Battle(at); got != "battle_1718000000123" {
		t.Fatalf("Battle = %q, want %q", got, "battle_1718000000123")
	}
	if got := Review(at); got != "review_1718000000123" {
		t.Fatalf("Review = %q, want %q", got, "review_1718000000123")
	}
}

func TestSessionIsUUID(t *testing.T) {
	a, b := Session(), Session()
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("Session() = %q is not a uuid: %v", a, err)
	}
	if a == b {
		t.Fatalf("Session() returned %q twice", a)
	}
}
