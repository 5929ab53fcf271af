package utils

import "testing"

func TestGravatarURL(t *testing.T) {
	// Hash of the normalized address: Gravatar requires trimmed + lowercased
	// input, so casing and whitespace must not change the URL.
	want := GravatarURL("ada@example.com", 200)
	if got := GravatarURL("  Ada@Example.COM ", 200); got != want {
		t.Errorf("normalization changed URL: %q vs %q", got, want)
	}

	if got := GravatarURL("ada@example.com", 0); got != want {
		t.Errorf("size fallback: got %q, want %q", got, want)
	}

	if got, other := GravatarURL("ada@example.com", 80), want; got == other {
		t.Error("size parameter ignored")
	}
}
