package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/jobs"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/storage"
	"github.com/meetai-dev/meetai-backend/internal/usecase/lifecycle"
	"github.com/meetai-dev/meetai-backend/pkg/ai"
)

// summaryUnavailable is saved when the model cannot produce a summary, so
// the meeting still completes and the chat responder has something to show.
const summaryUnavailable = "Summary unavailable"

const systemPrompt = `You are an expert summarizer. You write readable, concise, simple content. You are given a transcript of a meeting and you need to summarize it.

Use the following markdown structure for every output:

### Overview
Provide a detailed, engaging summary of the session's content. Focus on major features, user workflows, and any key takeaways. Write in a narrative style, using full sentences. Highlight unique or powerful aspects of the product, platform, or discussion.

### Notes
Break down key content into thematic sections with timestamp ranges. Each section should summarize key points, actions, or demos in bullet format.

Example:
#### Section Name
- Main point or demo shown here
- Another key insight or interaction
- Follow-up tool or explanation provided

#### Next Section
- Feature X automatically does Y
- Mention of integration with Z`

// Completer produces a chat completion from a message history
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, temperature float64) (string, error)
}

// Service runs the post-meeting summarization pipeline
type Service struct {
	meetingRepo repositories.MeetingRepository
	userRepo    repositories.UserRepository
	agentRepo   repositories.AgentRepository
	llm         Completer
	archiver    storage.Archiver
	http        *http.Client
	logger      *zap.Logger
}

// NewService constructs a summarizer service. The archiver is optional; when
// nil, transcripts are not mirrored into object storage.
func NewService(
	meetingRepo repositories.MeetingRepository,
	userRepo repositories.UserRepository,
	agentRepo repositories.AgentRepository,
	llm Completer,
	archiver storage.Archiver,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		agentRepo:   agentRepo,
		llm:         llm,
		archiver:    archiver,
		http:        &http.Client{Timeout: 2 * time.Minute},
		logger:      logger,
	}
}

// Register binds the pipeline to the job runner
func (s *Service) Register(runner *jobs.Runner) {
	runner.Register(lifecycle.ProcessingEventName, s.Handle)
}

// Handle executes the pipeline for one meeting. Each step checkpoints its
// result, so a retried job resumes where the previous attempt stopped.
func (s *Service) Handle(ctx context.Context, step *jobs.StepRunner, payload datatypes.JSONMap) error {
	meetingIDRaw, _ := payload["meeting_id"].(string)
	transcriptURL, _ := payload["transcript_url"].(string)

	meetingID, err := uuid.Parse(meetingIDRaw)
	if err != nil {
		return fmt.Errorf("invalid meeting_id in payload: %w", err)
	}
	if transcriptURL == "" {
		return fmt.Errorf("missing transcript_url in payload")
	}

	var raw string
	err = step.Run(ctx, "fetch-transcript", func(ctx context.Context) (interface{}, error) {
		return s.fetchTranscript(ctx, transcriptURL)
	}, &raw)
	if err != nil {
		return err
	}

	var transcript []entities.TranscriptItem
	err = step.Run(ctx, "parse-transcript", func(_ context.Context) (interface{}, error) {
		return ParseJSONL(raw)
	}, &transcript)
	if err != nil {
		return err
	}

	var withSpeakers []entities.TranscriptItemWithSpeaker
	err = step.Run(ctx, "add-speakers", func(ctx context.Context) (interface{}, error) {
		return s.addSpeakers(ctx, transcript)
	}, &withSpeakers)
	if err != nil {
		return err
	}

	summary := s.summarize(ctx, withSpeakers)
	s.archiveSummary(ctx, meetingID, summary)

	return step.Run(ctx, "save-summary", func(ctx context.Context) (interface{}, error) {
		return nil, s.saveSummary(ctx, meetingID, summary)
	}, nil)
}

// archiveSummary mirrors the summary markdown into object storage. Failures
// are logged and swallowed; the database copy is the source of truth.
func (s *Service) archiveSummary(ctx context.Context, meetingID uuid.UUID, summary string) {
	if s.archiver == nil || summary == summaryUnavailable {
		return
	}

	objectName := fmt.Sprintf("summaries/%s.md", meetingID)
	if _, err := s.archiver.ArchiveText(ctx, objectName, summary); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to archive summary",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) fetchTranscript(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create transcript request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript body: %w", err)
	}
	return string(body), nil
}

// addSpeakers resolves speaker ids against users and agents. Ids matching
// neither keep the item with an "Unknown" speaker, and matches without a
// name fall back to a placeholder.
func (s *Service) addSpeakers(ctx context.Context, transcript []entities.TranscriptItem) ([]entities.TranscriptItemWithSpeaker, error) {
	speakerIDs := make([]uuid.UUID, 0)
	seen := make(map[string]bool)
	for _, item := range transcript {
		if seen[item.SpeakerID] {
			continue
		}
		seen[item.SpeakerID] = true
		if id, err := uuid.Parse(item.SpeakerID); err == nil {
			speakerIDs = append(speakerIDs, id)
		}
	}

	names := make(map[string]string)

	users, err := s.userRepo.FindByIDs(ctx, speakerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load user speakers: %w", err)
	}
	for _, u := range users {
		names[u.ID.String()] = u.Name
	}

	agents, err := s.agentRepo.FindByIDs(ctx, speakerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent speakers: %w", err)
	}
	for _, a := range agents {
		names[a.ID.String()] = a.Name
	}

	result := make([]entities.TranscriptItemWithSpeaker, 0, len(transcript))
	for _, item := range transcript {
		name, found := names[item.SpeakerID]
		switch {
		case !found:
			name = "Unknown"
		case name == "":
			name = "Unnamed Speaker"
		}
		result = append(result, entities.TranscriptItemWithSpeaker{
			TranscriptItem: item,
			User:           entities.SpeakerName{Name: name},
		})
	}
	return result, nil
}

// summarize asks the model for a markdown summary. Failures degrade to the
// sentinel text rather than failing the pipeline.
func (s *Service) summarize(ctx context.Context, transcript []entities.TranscriptItemWithSpeaker) string {
	encoded, err := json.Marshal(transcript)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to encode transcript for summarization", zap.Error(err))
		}
		return summaryUnavailable
	}

	messages := []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Summarize the following transcript: " + string(encoded)},
	}

	summary, err := s.llm.Complete(ctx, messages, 0)
	if err != nil || summary == "" {
		if s.logger != nil {
			s.logger.Error("❌ Failed to generate summary, saving sentinel", zap.Error(err))
		}
		return summaryUnavailable
	}
	return summary
}

// saveSummary is the only path that marks a meeting completed
func (s *Service) saveSummary(ctx context.Context, meetingID uuid.UUID, summary string) error {
	ok, err := s.meetingRepo.ApplyTransition(ctx, meetingID,
		lifecycle.AllowedSources(entities.MeetingStatusCompleted),
		entities.MeetingStatusCompleted,
		repositories.MeetingPatch{"summary": summary},
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	if !ok {
		// Already completed by an earlier attempt, or cancelled meanwhile.
		if s.logger != nil {
			s.logger.Warn("⏭️ Meeting not in processing status, summary not saved",
				zap.String("meeting_id", meetingID.String()),
			)
		}
		return nil
	}

	if s.logger != nil {
		s.logger.Info("✅ Meeting summary saved",
			zap.String("meeting_id", meetingID.String()),
		)
	}
	return nil
}
