package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared&mode=rwc"
	s, err := New(context.Background(), Config{DSN: dsn, Prefix: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetSet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	val, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val, "missing key reads as empty")

	require.NoError(t, s.Set(ctx, "k", "v1"))
	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	// upsert replaces
	require.NoError(t, s.Set(ctx, "k", "v2"))
	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)

	require.NoError(t, s.Delete(ctx, "k"))
	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestStore_Profile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{}, p, "first use yields zero profile")

	want := domain.Profile{Name: "Аня", City: "Москва", Selected: []string{"music", "theatre"}}
	require.NoError(t, s.SaveProfile(ctx, want))

	p, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, p)
}

func TestStore_ProfileCorruptBlob(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "test-profile", "{corrupt"))
	p, err := s.Profile(ctx)
	require.NoError(t, err, "corrupt blob degrades, does not error")
	assert.Equal(t, domain.Profile{}, p)
}

func TestStore_Selection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sel, err := s.Selection(ctx)
	require.NoError(t, err)
	assert.Empty(t, sel)

	require.NoError(t, s.SaveSelection(ctx, []string{"music", "parties"}))
	sel, err = s.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"music", "parties"}, sel)
}

func TestStore_Toggle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sel, err := s.Toggle(ctx, "music")
	require.NoError(t, err)
	assert.Equal(t, []string{"music"}, sel)

	sel, err = s.Toggle(ctx, "theatre")
	require.NoError(t, err)
	assert.Equal(t, []string{"music", "theatre"}, sel)

	// toggling again removes
	sel, err = s.Toggle(ctx, "music")
	require.NoError(t, err)
	assert.Equal(t, []string{"theatre"}, sel)

	// persisted across reads
	sel, err = s.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"theatre"}, sel)
}

func TestStore_Tokens(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetAccessToken(ctx, "tk-access"))
	require.NoError(t, s.SetRefreshToken(ctx, "tk-refresh"))

	tok, err = s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tk-access", tok)

	tok, err = s.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tk-refresh", tok)

	// empty token clears the key
	require.NoError(t, s.SetAccessToken(ctx, ""))
	tok, err = s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
