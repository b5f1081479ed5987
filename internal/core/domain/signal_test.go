package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeContentHash_Deterministic(t *testing.T) {
	h1 := ComputeContentHash(SourceGitHub, "org/repo", "stars: 120")
	h2 := ComputeContentHash(SourceGitHub, "org/repo", "stars: 120")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestComputeContentHash_ChangesWithContent(t *testing.T) {
	base := ComputeContentHash(SourceGitHub, "org/repo", "stars: 120")

	assert.NotEqual(t, base, ComputeContentHash(SourceGitHub, "org/repo", "stars: 121"))
	assert.NotEqual(t, base, ComputeContentHash(SourceArxiv, "org/repo", "stars: 120"))
	assert.NotEqual(t, base, ComputeContentHash(SourceGitHub, "org/other", "stars: 120"))
}

func TestSourceKind_Valid(t *testing.T) {
	tests := []struct {
		kind  SourceKind
		valid bool
	}{
		{SourceGitHub, true},
		{SourceArxiv, true},
		{SourceHackerNews, true},
		{SourceKind("medium"), false},
		{SourceKind(""), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.kind.Valid(), "kind %q", tt.kind)
	}
}

func TestAdmitDecision_String(t *testing.T) {
	assert.Equal(t, "admitted", Admitted.String())
	assert.Equal(t, "duplicate_unchanged", DuplicateUnchanged.String())
	assert.Equal(t, "duplicate_changed", DuplicateChanged.String())
}
