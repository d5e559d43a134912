package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/roulette/internal/domain"
)

func TestPreferences_SetFilter(t *testing.T) {
	store := newMemStore()
	uc := NewPreferences(newTestRoulette(t, nil, store, newFakeDialer()))

	f, err := uc.SetFilter("nsfw-only")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterOnly, f)
	assert.Equal(t, domain.FilterOnly, store.prefs.Filter)

	_, err = uc.SetFilter("sometimes")
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.Equal(t, domain.FilterOnly, store.prefs.Filter)
}

func TestPreferences_CycleFilter(t *testing.T) {
	uc := NewPreferences(newTestRoulette(t, nil, newMemStore(), newFakeDialer()))

	got := []domain.NSFWFilter{}
	for range 3 {
		f, err := uc.CycleFilter()
		require.NoError(t, err)
		got = append(got, f)
	}
	assert.Equal(t, []domain.NSFWFilter{domain.FilterOnly, domain.FilterAll, domain.FilterNone}, got)
}

func TestPreferences_BlockUnblock(t *testing.T) {
	store := newMemStore()
	uc := NewPreferences(newTestRoulette(t, nil, store, newFakeDialer()))

	changed, err := uc.Block("Lemmy.Example")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = uc.Block("lemmy.example")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"lemmy.example"}, store.prefs.BlockedInstances)

	changed, err = uc.Unblock("LEMMY.example")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, store.prefs.BlockedInstances)
}

func TestPreferences_ResetSeenAndShow(t *testing.T) {
	store := newMemStore()
	store.prefs.CheckedCommunities = []string{"1@2"}
	store.prefs.Session = domain.Session{JWT: "secret", Instance: "home.example"}
	uc := NewPreferences(newTestRoulette(t, nil, store, newFakeDialer()))

	require.NoError(t, uc.ResetSeen())
	assert.Empty(t, store.prefs.CheckedCommunities)

	shown := uc.Show()
	assert.Equal(t, domain.MaskValue, shown.Session.JWT)
	assert.Equal(t, "secret", store.prefs.Session.JWT)
}
