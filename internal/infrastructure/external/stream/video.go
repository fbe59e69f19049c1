package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meetai-dev/meetai-backend/pkg/config"
)

// ConnectAgentOptions configures the realtime agent joining a call
type ConnectAgentOptions struct {
	AgentUserID  string
	Instructions string
	Model        string
	Voice        string
}

// VideoClient wraps Stream Video operations
type VideoClient interface {
	// ConnectAgent attaches a realtime voice agent to an active call
	ConnectAgent(ctx context.Context, callID string, options ConnectAgentOptions) error
	// EndCall marks the call as ended for all participants
	EndCall(ctx context.Context, callID string) error
	// UserToken issues a client-side token for joining calls as the user
	UserToken(userID string, validFor time.Duration) (string, error)
}

// realVideoClient is the real Stream Video client implementation
type realVideoClient struct {
	http     *httpClient
	callType string
}

// NewVideoClient creates a new Stream Video client
func NewVideoClient(cfg *config.StreamConfig) VideoClient {
	if cfg.UseMock {
		return &MockVideoClient{apiSecret: cfg.APISecret}
	}
	return &realVideoClient{
		http:     newHTTPClient(cfg),
		callType: cfg.CallType,
	}
}

func (c *realVideoClient) UserToken(userID string, validFor time.Duration) (string, error) {
	return signUserToken(c.http.apiSecret, userID, validFor)
}

func (c *realVideoClient) ConnectAgent(ctx context.Context, callID string, options ConnectAgentOptions) error {
	path := fmt.Sprintf("/video/call/%s/%s/openai_connect", c.callType, callID)
	body := map[string]interface{}{
		"agent_user_id": options.AgentUserID,
		"model":         options.Model,
		"voice":         options.Voice,
		"instructions":  options.Instructions,
	}
	if err := c.http.do(ctx, "POST", path, body, nil); err != nil {
		return fmt.Errorf("failed to connect agent to call %s: %w", callID, err)
	}
	return nil
}

func (c *realVideoClient) EndCall(ctx context.Context, callID string) error {
	path := fmt.Sprintf("/video/call/%s/%s/mark_ended", c.callType, callID)
	if err := c.http.do(ctx, "POST", path, map[string]interface{}{}, nil); err != nil {
		return fmt.Errorf("failed to end call %s: %w", callID, err)
	}
	return nil
}

// MockVideoClient records calls and always succeeds
type MockVideoClient struct {
	mu             sync.Mutex
	apiSecret      string
	ConnectedCalls []string
	ConnectOptions []ConnectAgentOptions
	EndedCalls     []string

	ConnectErr error
	EndErr     error
}

func (m *MockVideoClient) ConnectAgent(_ context.Context, callID string, options ConnectAgentOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.ConnectedCalls = append(m.ConnectedCalls, callID)
	m.ConnectOptions = append(m.ConnectOptions, options)
	return nil
}

func (m *MockVideoClient) EndCall(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EndErr != nil {
		return m.EndErr
	}
	m.EndedCalls = append(m.EndedCalls, callID)
	return nil
}

// UserToken (mock) signs a real token for consistency
func (m *MockVideoClient) UserToken(userID string, validFor time.Duration) (string, error) {
	secret := m.apiSecret
	if secret == "" {
		secret = "mock-secret"
	}
	return signUserToken(secret, userID, validFor)
}
