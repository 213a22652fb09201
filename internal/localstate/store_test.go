package localstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestPreferenceRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, s.Theme())
	assert.Empty(t, s.Language())

	require.NoError(t, s.SetTheme("sky"))
	require.NoError(t, s.SetLanguage("en"))
	assert.Equal(t, "sky", s.Theme())
	assert.Equal(t, "en", s.Language())

	require.NoError(t, s.SetTheme("emerald"))
	assert.Equal(t, "emerald", s.Theme())
}

func TestPreferencesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetTheme("sky"))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "sky", reopened.Theme())
}

func TestMarkerIsOneShot(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.ConsumeMarker(MarkerLogout), "unarmed marker reads false")

	require.NoError(t, s.SetMarker(MarkerLogout))
	assert.True(t, s.ConsumeMarker(MarkerLogout))
	assert.False(t, s.ConsumeMarker(MarkerLogout), "a marker is observed at most once")
}

func TestMarkersAreIndependent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SetMarker(MarkerJustRegistered))
	assert.False(t, s.ConsumeMarker(MarkerLogout))
	assert.True(t, s.ConsumeMarker(MarkerJustRegistered))
}
