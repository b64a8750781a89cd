package preferences_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/domain"
	"devisflow/internal/port"
	"devisflow/internal/preferences"
)

func newRedisStore(t *testing.T) (*preferences.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return preferences.NewRedisStore(client), mr
}

func stores(t *testing.T) map[string]port.PreferenceStore {
	rs, _ := newRedisStore(t)
	return map[string]port.PreferenceStore{
		"redis":  rs,
		"memory": preferences.NewMemoryStore(),
	}
}

func TestStores_SaveAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			prefs := domain.Preferences{Provider: domain.ProviderMistral, Theme: domain.ThemeDark, Enrich: false}

			require.NoError(t, s.Save(ctx, "u1", prefs))
			got, err := s.Get(ctx, "u1")

			require.NoError(t, err)
			assert.Equal(t, prefs, *got)
		})
	}
}

func TestStores_GetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nobody")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestStores_RejectInvalid(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(context.Background(), "u1", domain.Preferences{Provider: "gemini", Theme: domain.ThemeLight})
			assert.ErrorIs(t, err, domain.ErrInvalidPreferences)
		})
	}
}

func TestRedisStore_StoresJSONUnderUserKey(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Save(context.Background(), "u1", domain.DefaultPreferences()))

	raw, err := mr.Get("devisflow:prefs:u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"local","theme":"light","enrich":true}`, raw)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set(preferences.Key("u1"), "not json"))

	_, err := s.Get(context.Background(), "u1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
