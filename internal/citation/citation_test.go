package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAt(t *testing.T) {
	assert.Equal(t, Token("[S00001]"), TokenAt(1))
	assert.Equal(t, Token("[S00042]"), TokenAt(42))
	assert.Equal(t, Token("[S12345]"), TokenAt(12345))
}

func TestAssembler_SequentialScoped(t *testing.T) {
	a := NewAssembler()
	assert.Equal(t, Token("[S00001]"), a.Next())
	assert.Equal(t, Token("[S00002]"), a.Next())
	assert.Equal(t, []Token{"[S00001]", "[S00002]"}, a.Supplied())

	// a fresh assembler restarts the sequence: tokens are per-question
	b := NewAssembler()
	assert.Equal(t, Token("[S00001]"), b.Next())
}

func TestValidate_RoundTrip(t *testing.T) {
	supplied := []Token{"[S00001]", "[S00002]"}
	answer := "The pump feeds the manifold [S00001], rated at 40 bar [S00003]."

	result := Validate(answer, supplied)

	assert.Equal(t, []Token{"[S00001]", "[S00003]"}, result.Found)
	assert.Equal(t, []Token{"[S00003]"}, result.Hallucinated)
	assert.Equal(t, []Token{"[S00002]"}, result.Unused)
	assert.False(t, result.Valid())
}

func TestValidate_AllCitedAndSupplied(t *testing.T) {
	supplied := []Token{"[S00001]"}
	result := Validate("see [S00001] and again [S00001]", supplied)

	require.Len(t, result.Found, 1, "repeated citations collapse to first appearance")
	assert.Empty(t, result.Hallucinated)
	assert.Empty(t, result.Unused)
	assert.True(t, result.Valid())
}

func TestValidate_NoTokensInAnswer(t *testing.T) {
	supplied := []Token{"[S00001]", "[S00002]"}
	result := Validate("no citations here", supplied)

	assert.Empty(t, result.Found)
	assert.Empty(t, result.Hallucinated)
	assert.Equal(t, supplied, result.Unused)
	assert.True(t, result.Valid())
}

func TestValidate_IgnoresMalformedTokens(t *testing.T) {
	result := Validate("[S123] [S1234567] [T00001] [S00005]", []Token{"[S00005]"})
	assert.Equal(t, []Token{"[S00005]"}, result.Found)
}

func TestValidate_FirstAppearanceOrder(t *testing.T) {
	result := Validate("[S00003] then [S00001] then [S00003]", nil)
	assert.Equal(t, []Token{"[S00003]", "[S00001]"}, result.Found)
}
