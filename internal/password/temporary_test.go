package password

import (
	"strings"
	"testing"
)

func TestGenerateTemporary_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw := GenerateTemporary()
		if len(pw) != TemporaryLength {
			t.Fatalf("len(%q) = %d, want %d", pw, len(pw), TemporaryLength)
		}
		for _, r := range pw {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("%q contains %q outside [a-zA-Z0-9]", pw, r)
			}
		}
	}
}

func TestGenerateTemporary_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		pw := GenerateTemporary()
		if _, ok := seen[pw]; ok {
			t.Fatalf("temporary password %q generated twice", pw)
		}
		seen[pw] = struct{}{}
	}
}

func TestAlphabet_Has62Symbols(t *testing.T) {
	if len(alphabet) != 62 {
		t.Fatalf("alphabet has %d symbols, want 62", len(alphabet))
	}
}
