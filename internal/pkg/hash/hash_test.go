package hash

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	k1 := Key("a|b|c", "a|c|b", "0.9", "corrected")
	k2 := Key("a|b|c", "a|c|b", "0.9", "corrected")
	if k1 != k2 {
		t.Errorf("Key not deterministic: %s != %s", k1, k2)
	}

	if k3 := Key("a|b|c", "a|c|b", "0.9", "raw"); k1 == k3 {
		t.Errorf("Key collision across modes: %s", k1)
	}

	// Framing must distinguish how bytes are split between parts.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key(ab, c) == Key(a, bc)")
	}

	if len(k1) != 32 {
		t.Errorf("Key length = %d, want 32", len(k1))
	}
	for _, c := range k1 {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("Key contains non-hex character: %c", c)
		}
	}
}

func BenchmarkKey(b *testing.B) {
	left := strings.Repeat("item|", 100)
	right := strings.Repeat("other|", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Key(left, right, "0.9", "corrected")
	}
}
