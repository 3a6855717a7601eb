package perception

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(Config{Provider: ProviderAnthropic})
	assert.Error(t, err, "missing API key must fail")

	_, err = NewClient(Config{Provider: "psychic", APIKey: "k"})
	assert.Error(t, err, "unknown provider must fail")
}

func TestNewClient_ProviderSelection(t *testing.T) {
	c, err := NewClient(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	c, err = NewClient(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestAnthropicClient_CompleteWithSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "  hello  "}]}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Provider: ProviderAnthropic,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)

	got, err := c.CompleteWithSystem(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestAnthropicClient_RetriesTransientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "recovered"}]}`)
	}))
	defer srv.Close()

	c := newAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 10 * time.Second, Logger: nopLogger()})

	got, err := c.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestAnthropicClient_HardFailureDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: nopLogger()})

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenAIClient_CompleteWithSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}, "finish_reason": "stop"}]}`)
	}))
	defer srv.Close()

	c := newOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: nopLogger()})

	got, err := c.CompleteWithSystem(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestMockClient_ScriptedResponses(t *testing.T) {
	m := &MockClient{Responses: []string{"one", "two"}}

	got, err := m.Complete(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	got, err = m.CompleteWithSystem(context.Background(), "s", "b")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	_, err = m.Complete(context.Background(), "c")
	assert.Error(t, err, "script exhausted")
	assert.Len(t, m.Calls, 3)
}
