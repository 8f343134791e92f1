package memory

import (
	"testing"
)

func TestContentIDStable(t *testing.T) {
	a := ContentID("the same report text")
	b := ContentID("the same report text")
	if a != b {
		t.Errorf("identical content produced different ids: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("id length = %d, want 32 hex chars", len(a))
	}
}

func TestContentIDDiffers(t *testing.T) {
	if ContentID("report a") == ContentID("report b") {
		t.Error("different content produced the same id")
	}
}
