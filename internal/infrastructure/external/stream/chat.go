package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/meetai-dev/meetai-backend/pkg/config"
)

// ChatMessage is a message in a chat channel
type ChatMessage struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

// ChatUser is a chat participant profile
type ChatUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
}

// ChatClient wraps Stream Chat operations
type ChatClient interface {
	// RecentMessages returns up to limit of the latest messages in a channel,
	// oldest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]ChatMessage, error)
	// UpsertUser creates or updates a chat user profile
	UpsertUser(ctx context.Context, user ChatUser) error
	// SendMessage posts a message to a channel on behalf of the given user
	SendMessage(ctx context.Context, channelID, userID, text string) error
}

// realChatClient is the real Stream Chat client implementation
type realChatClient struct {
	http *httpClient
}

// NewChatClient creates a new Stream Chat client
func NewChatClient(cfg *config.StreamConfig) ChatClient {
	if cfg.UseMock {
		return &MockChatClient{}
	}
	return &realChatClient{
		http: newHTTPClient(cfg),
	}
}

func (c *realChatClient) RecentMessages(ctx context.Context, channelID string, limit int) ([]ChatMessage, error) {
	path := fmt.Sprintf("/channels/messaging/%s/query", channelID)
	body := map[string]interface{}{
		"messages": map[string]interface{}{
			"limit": limit,
		},
	}

	var resp struct {
		Messages []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"messages"`
	}
	if err := c.http.do(ctx, "POST", path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to query channel %s: %w", channelID, err)
	}

	messages := make([]ChatMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, ChatMessage{
			ID:     m.ID,
			Text:   m.Text,
			UserID: m.User.ID,
		})
	}
	return messages, nil
}

func (c *realChatClient) UpsertUser(ctx context.Context, user ChatUser) error {
	body := map[string]interface{}{
		"users": map[string]interface{}{
			user.ID: map[string]interface{}{
				"id":    user.ID,
				"name":  user.Name,
				"image": user.ImageURL,
			},
		},
	}
	if err := c.http.do(ctx, "POST", "/users", body, nil); err != nil {
		return fmt.Errorf("failed to upsert chat user %s: %w", user.ID, err)
	}
	return nil
}

func (c *realChatClient) SendMessage(ctx context.Context, channelID, userID, text string) error {
	path := fmt.Sprintf("/channels/messaging/%s/message", channelID)
	body := map[string]interface{}{
		"message": map[string]interface{}{
			"text":    text,
			"user_id": userID,
		},
	}
	if err := c.http.do(ctx, "POST", path, body, nil); err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return nil
}

// MockChatClient records calls and serves canned history
type MockChatClient struct {
	mu       sync.Mutex
	History  map[string][]ChatMessage
	Upserted []ChatUser
	Sent     []ChatMessage

	QueryErr  error
	UpsertErr error
	SendErr   error
}

func (m *MockChatClient) RecentMessages(_ context.Context, channelID string, limit int) ([]ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	messages := m.History[channelID]
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (m *MockChatClient) UpsertUser(_ context.Context, user ChatUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Upserted = append(m.Upserted, user)
	return nil
}

func (m *MockChatClient) SendMessage(_ context.Context, channelID, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, ChatMessage{UserID: userID, Text: text})
	if m.History == nil {
		m.History = make(map[string][]ChatMessage)
	}
	m.History[channelID] = append(m.History[channelID], ChatMessage{UserID: userID, Text: text})
	return nil
}
