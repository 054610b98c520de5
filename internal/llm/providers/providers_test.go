package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prompteval/internal/llm"
)

func testConfig(t *testing.T, handler http.HandlerFunc) Config {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return Config{
		Endpoint:   server.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		HTTPClient: server.Client(),
	}
}

func TestOpenAIInvoke(t *testing.T) {
	t.Run("returns first choice content", func(t *testing.T) {
		var gotAuth string
		cfg := testConfig(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "/chat/completions", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Enhanced prompt: hello"}}]}`))
		})

		text, err := NewOpenAI(cfg).Invoke(context.Background(), "system", "user")
		require.NoError(t, err)
		assert.Equal(t, "Enhanced prompt: hello", text)
		assert.Equal(t, "Bearer test-key", gotAuth)
	})

	t.Run("classifies 401 as authentication", func(t *testing.T) {
		cfg := testConfig(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
		})

		_, err := NewOpenAI(cfg).Invoke(context.Background(), "system", "user")
		require.Error(t, err)
		assert.True(t, llm.IsAuthentication(err))
		assert.False(t, llm.IsRetryable(err))

		var pe *llm.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "Incorrect API key provided", pe.Message)
		assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	})

	t.Run("classifies 429 as rate limit with retry-after", func(t *testing.T) {
		cfg := testConfig(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
		})

		_, err := NewOpenAI(cfg).Invoke(context.Background(), "system", "user")
		require.Error(t, err)
		assert.True(t, llm.IsRetryable(err))

		var pe *llm.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, llm.ErrorTypeRateLimit, pe.Type)
		assert.Equal(t, 7, pe.RetryAfter)
	})

	t.Run("classifies 503 as transient", func(t *testing.T) {
		cfg := testConfig(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := NewOpenAI(cfg).Invoke(context.Background(), "system", "user")
		require.Error(t, err)
		assert.True(t, llm.IsRetryable(err))

		var pe *llm.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, llm.ErrorTypeTransient, pe.Type)
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		cfg := testConfig(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		_, err := NewOpenAI(cfg).Invoke(context.Background(), "system", "user")
		assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
	})
}

func TestAnthropicInvoke(t *testing.T) {
	t.Run("returns first content block and sets headers", func(t *testing.T) {
		var gotKey, gotVersion string
		cfg := testConfig(t, func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-api-key")
			gotVersion = r.Header.Get("anthropic-version")
			assert.Equal(t, "/messages", r.URL.Path)
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Honesty Score: 88"}]}`))
		})

		text, err := NewAnthropic(cfg).Invoke(context.Background(), "system", "user")
		require.NoError(t, err)
		assert.Equal(t, "Honesty Score: 88", text)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "2023-06-01", gotVersion)
	})

	t.Run("flat message error shape", func(t *testing.T) {
		cfg := testConfig(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"type":"error","message":"invalid x-api-key"}`))
		})

		_, err := NewAnthropic(cfg).Invoke(context.Background(), "system", "user")
		require.Error(t, err)
		assert.True(t, llm.IsAuthentication(err))

		var pe *llm.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "invalid x-api-key", pe.Message)
	})
}

func TestGoogleInvoke(t *testing.T) {
	cfg := testConfig(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"answer text"}]}}]}`))
	})

	text, err := NewGoogle(cfg).Invoke(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "answer text", text)
}

func TestCohereInvoke(t *testing.T) {
	cfg := testConfig(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		_, _ = w.Write([]byte(`{"text":"reply"}`))
	})

	text, err := NewCohere(cfg).Invoke(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "reply", text)
}

func TestNew(t *testing.T) {
	t.Run("constructs every supported provider", func(t *testing.T) {
		for _, name := range Supported() {
			client, err := New(name, Config{APIKey: "k", Model: "m"})
			require.NoError(t, err, "provider %q", name)
			assert.Equal(t, name, client.Provider())
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New("hal9000", Config{})
		require.Error(t, err)
		assert.ErrorIs(t, err, llm.ErrUnknownProvider)
	})
}
