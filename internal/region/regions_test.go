package region_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrolnearme/petrolnearme/internal/region"
)

func TestGet(t *testing.T) {
	southern := region.Get("southern")
	require.NotNil(t, southern)
	assert.Equal(t, "Southern Suburbs", southern.Name)

	assert.Same(t, southern, region.Get(" Southern "))
	assert.Nil(t, region.Get("tasmania"))
}

func TestAll_StableOrder(t *testing.T) {
	defs := region.All()
	require.Len(t, defs, 5)
	assert.Equal(t, "inner", defs[0].ID)
	assert.Equal(t, "western", defs[4].ID)
}

func TestContainsSuburb_CaseInsensitive(t *testing.T) {
	southern := region.Get("southern")

	assert.True(t, southern.ContainsSuburb("Frankston"))
	assert.True(t, southern.ContainsSuburb("frankston"))
	assert.True(t, southern.ContainsSuburb("  DANDENONG "))
	assert.False(t, southern.ContainsSuburb("Coburg"))
}

func TestMatches_BoundingBoxMode(t *testing.T) {
	d := *region.Get("northern")
	d.Mode = region.MatchBoundingBox

	// Coburg sits inside the northern box.
	assert.True(t, d.Matches("", -37.7441, 144.9633, true))
	// Frankston does not.
	assert.False(t, d.Matches("", -38.1413, 145.1226, true))
	// Invalid coordinates never match in box mode.
	assert.False(t, d.Matches("Coburg", -37.7441, 144.9633, false))
}

func TestMatches_SuburbMode(t *testing.T) {
	northern := region.Get("northern")

	assert.True(t, northern.Matches("Coburg", 0, 0, false))
	assert.False(t, northern.Matches("Frankston", 0, 0, false))
}
