package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/cache"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/external/stream"
	"github.com/meetai-dev/meetai-backend/pkg/ai"
	"github.com/meetai-dev/meetai-backend/pkg/avatar"
)

// dedupWindow bounds how long a processed message id blocks redeliveries
const dedupWindow = 5 * time.Minute

// historyLimit is how many prior messages feed the model as context
const historyLimit = 5

// Result describes how an incoming chat message was handled
type Result string

const (
	ResultReplied             Result = "replied"
	ResultDuplicateIgnored    Result = "duplicate_ignored"
	ResultAgentMessageIgnored Result = "agent_message_ignored"
)

// Message is an incoming chat message from the provider
type Message struct {
	MessageID string
	UserID    string
	ChannelID string
	Text      string
}

// Completer produces a chat completion from a message history
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, temperature float64) (string, error)
}

// Responder answers questions about completed meetings in their chat channels
type Responder struct {
	meetingRepo repositories.MeetingRepository
	agentRepo   repositories.AgentRepository
	chatClient  stream.ChatClient
	llm         Completer
	seen        cache.SeenSet
	logger      *zap.Logger
}

// NewResponder constructs a chat responder
func NewResponder(
	meetingRepo repositories.MeetingRepository,
	agentRepo repositories.AgentRepository,
	chatClient stream.ChatClient,
	llm Completer,
	seen cache.SeenSet,
	logger *zap.Logger,
) *Responder {
	return &Responder{
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		chatClient:  chatClient,
		llm:         llm,
		seen:        seen,
		logger:      logger,
	}
}

// Respond generates and posts the agent's reply to a user message. The
// channel id doubles as the meeting id, and only completed meetings accept
// follow-up questions.
func (r *Responder) Respond(ctx context.Context, msg Message) (Result, error) {
	duplicate, err := r.seen.CheckAndMark(ctx, msg.MessageID, dedupWindow)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}
	if duplicate {
		if r.logger != nil {
			r.logger.Info("⏭️ Duplicate message ignored",
				zap.String("message_id", msg.MessageID),
			)
		}
		return ResultDuplicateIgnored, nil
	}

	meetingID, err := uuid.Parse(msg.ChannelID)
	if err != nil {
		return "", apperrors.ErrMeetingNotFound(msg.ChannelID)
	}

	meeting, err := r.meetingRepo.FindByIDWithStatus(ctx, meetingID, entities.MeetingStatusCompleted)
	if err != nil {
		return "", apperrors.ErrQueryFailed(err)
	}
	if meeting == nil {
		return "", apperrors.ErrMeetingNotFound(msg.ChannelID)
	}

	agent, err := r.agentRepo.FindByID(ctx, meeting.AgentID)
	if err != nil {
		return "", apperrors.ErrQueryFailed(err)
	}
	if agent == nil {
		return "", apperrors.ErrAgentNotFound(meeting.AgentID.String())
	}

	// The agent's own replies come back through the same webhook, so answering
	// them would loop forever.
	if msg.UserID == agent.ID.String() {
		return ResultAgentMessageIgnored, nil
	}

	summary := ""
	if meeting.Summary != nil {
		summary = *meeting.Summary
	}
	instructions := buildInstructions(summary, agent.Instructions)

	history, err := r.chatClient.RecentMessages(ctx, msg.ChannelID, historyLimit)
	if err != nil {
		return "", apperrors.ErrChatIntegrationFailed(err)
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: "system", Content: instructions})
	for _, prev := range history {
		if strings.TrimSpace(prev.Text) == "" || prev.ID == msg.MessageID {
			continue
		}
		role := "user"
		if prev.UserID == agent.ID.String() {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: prev.Text})
	}
	messages = append(messages, ai.Message{Role: "user", Content: msg.Text})

	reply, err := r.llm.Complete(ctx, messages, 0.7)
	if err != nil {
		return "", apperrors.ErrAIRequestFailed(err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", apperrors.ErrEmptyAIResponse()
	}

	avatarURL := avatar.GenerateURL(agent.Name, avatar.VariantOpenPeeps)

	agentUser := stream.ChatUser{
		ID:       agent.ID.String(),
		Name:     agent.Name,
		ImageURL: avatarURL,
	}
	if err := r.chatClient.UpsertUser(ctx, agentUser); err != nil {
		return "", apperrors.ErrChatIntegrationFailed(err)
	}

	if err := r.chatClient.SendMessage(ctx, msg.ChannelID, agentUser.ID, reply); err != nil {
		return "", apperrors.ErrChatIntegrationFailed(err)
	}

	if r.logger != nil {
		r.logger.Info("💬 Agent replied",
			zap.String("meeting_id", msg.ChannelID),
			zap.String("agent_id", agentUser.ID),
		)
	}
	return ResultReplied, nil
}

func buildInstructions(summary, agentInstructions string) string {
	return fmt.Sprintf(`
You are an AI assistant helping the user revisit a recently completed meeting.
Below is a summary of the meeting, generated from the transcript:

%s

The following are your original instructions from the live meeting assistant. Please continue to follow these behavioral guidelines as you assist the user:

%s

The user may ask questions about the meeting, request clarifications, or ask for follow-up actions.
Always base your responses on the meeting summary above.

You also have access to the recent conversation history between you and the user. Use the context of previous messages to provide relevant, coherent, and helpful responses. If the user's question refers to something discussed earlier, make sure to take that into account and maintain continuity in the conversation.

If the summary does not contain enough information to answer a question, politely let the user know.

Be concise, helpful, and focus on providing accurate information from the meeting and the ongoing conversation.
`, summary, agentInstructions)
}
