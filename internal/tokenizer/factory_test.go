package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvModel, "")
}

func TestNewFromEnv(t *testing.T) {
	t.Run("defaults to heuristic", func(t *testing.T) {
		clearEnv(t)

		counter, err := NewFromEnv()
		require.NoError(t, err)
		defer counter.Close()

		assert.Equal(t, ProviderHeuristic, counter.Provider())
	})

	t.Run("endpoint selects remote", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvEndpoint, "http://localhost:8087/v1/tokenize/count")

		counter, err := NewFromEnv()
		require.NoError(t, err)
		defer counter.Close()

		assert.Equal(t, ProviderRemote, counter.Provider())
	})

	t.Run("explicit provider wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvProvider, "heuristic")
		t.Setenv(EnvEndpoint, "http://localhost:8087/v1/tokenize/count")

		counter, err := NewFromEnv()
		require.NoError(t, err)
		defer counter.Close()

		assert.Equal(t, ProviderHeuristic, counter.Provider())
	})

	t.Run("remote without endpoint fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvProvider, "remote")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrNoEndpoint)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvProvider, "quantum")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})

	t.Run("model override", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvEndpoint, "http://localhost:8087/v1/tokenize/count")
		t.Setenv(EnvModel, "o200k_base")

		counter, err := NewFromEnv()
		require.NoError(t, err)
		defer counter.Close()

		assert.Equal(t, "o200k_base", counter.Model())
	})
}

func TestNew(t *testing.T) {
	t.Run("remote", func(t *testing.T) {
		counter, err := New(Config{
			Provider:  ProviderRemote,
			Endpoint:  "http://localhost:8087/v1/tokenize/count",
			CacheSize: 100,
		})
		require.NoError(t, err)
		defer counter.Close()
		assert.Equal(t, ProviderRemote, counter.Provider())
	})

	t.Run("heuristic", func(t *testing.T) {
		counter, err := New(Config{Provider: ProviderHeuristic})
		require.NoError(t, err)
		defer counter.Close()
		assert.Equal(t, ProviderHeuristic, counter.Provider())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(Config{Provider: "nope"})
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})
}

func TestDetectProvider(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, ProviderHeuristic, DetectProvider())

	t.Setenv(EnvEndpoint, "http://localhost:8087/v1/tokenize/count")
	assert.Equal(t, ProviderRemote, DetectProvider())

	t.Setenv(EnvProvider, "REMOTE")
	assert.Equal(t, ProviderRemote, DetectProvider())
}
