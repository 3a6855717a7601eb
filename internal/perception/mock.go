package perception

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a scripted LLMClient for tests. Responses are returned
// in order; a ResponseFunc, when set, takes precedence and can inspect
// the prompts.
type MockClient struct {
	mu           sync.Mutex
	Responses    []string
	ResponseFunc func(systemPrompt, userPrompt string) (string, error)
	Err          error

	// Calls records every invocation for assertion.
	Calls []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	SystemPrompt string
	UserPrompt   string
}

// Complete implements LLMClient.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	return m.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem implements LLMClient.
func (m *MockClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})

	if m.ResponseFunc != nil {
		return m.ResponseFunc(systemPrompt, userPrompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("mock client: no scripted response for call %d", len(m.Calls))
	}

	next := m.Responses[0]
	m.Responses = m.Responses[1:]
	return next, nil
}
