package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/external/stream"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/jobs"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/storage"
	"github.com/meetai-dev/meetai-backend/pkg/config"
)

// ProcessingEventName is the job event that kicks off post-meeting analysis
const ProcessingEventName = "meetings/processing"

// Service drives meeting status changes off provider call events
type Service interface {
	HandleEvent(ctx context.Context, event Event) error
	OnCallStarted(ctx context.Context, meetingID uuid.UUID) error
	OnParticipantLeft(ctx context.Context, meetingID uuid.UUID) error
	OnCallEnded(ctx context.Context, meetingID uuid.UUID) error
	OnTranscriptionReady(ctx context.Context, meetingID uuid.UUID, transcriptURL string) error
	OnRecordingReady(ctx context.Context, meetingID uuid.UUID, recordingURL string) error
}

type service struct {
	meetingRepo repositories.MeetingRepository
	videoClient stream.VideoClient
	jobClient   jobs.Client
	archiver    storage.Archiver
	llmCfg      *config.LLMConfig
	logger      *zap.Logger
}

// NewService constructs a lifecycle service. The archiver may be nil when
// object storage is disabled, in which case provider URLs are stored as-is.
func NewService(
	meetingRepo repositories.MeetingRepository,
	videoClient stream.VideoClient,
	jobClient jobs.Client,
	archiver storage.Archiver,
	llmCfg *config.LLMConfig,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo: meetingRepo,
		videoClient: videoClient,
		jobClient:   jobClient,
		archiver:    archiver,
		llmCfg:      llmCfg,
		logger:      logger,
	}
}

// HandleEvent routes a decoded call event to its handler. Unknown events are
// acknowledged without acting so the provider does not retry them.
func (s *service) HandleEvent(ctx context.Context, event Event) error {
	switch e := event.(type) {
	case CallSessionStartedEvent:
		return s.OnCallStarted(ctx, e.MeetingID)
	case ParticipantLeftEvent:
		return s.OnParticipantLeft(ctx, e.MeetingID)
	case CallSessionEndedEvent:
		return s.OnCallEnded(ctx, e.MeetingID)
	case TranscriptionReadyEvent:
		return s.OnTranscriptionReady(ctx, e.MeetingID, e.TranscriptURL)
	case RecordingReadyEvent:
		return s.OnRecordingReady(ctx, e.MeetingID, e.RecordingURL)
	case UnknownEvent:
		if s.logger != nil {
			s.logger.Info("⏭️ Ignoring unhandled event type", zap.String("type", e.RawType))
		}
		return nil
	default:
		return fmt.Errorf("unsupported event %T", event)
	}
}

// OnCallStarted activates an upcoming meeting and connects the realtime
// agent to the call. Meetings in any other status report not found, which
// covers both bogus ids and redelivered start events.
func (s *service) OnCallStarted(ctx context.Context, meetingID uuid.UUID) error {
	now := time.Now()
	ok, err := s.meetingRepo.ApplyTransition(ctx, meetingID,
		AllowedSources(entities.MeetingStatusActive),
		entities.MeetingStatusActive,
		repositories.MeetingPatch{"started_at": now},
	)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	if !ok {
		return apperrors.ErrMeetingNotFound(meetingID.String())
	}

	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	if meeting == nil || meeting.Agent == nil {
		return apperrors.ErrAgentNotFound(meetingID.String())
	}

	if s.logger != nil {
		s.logger.Info("📞 Call started",
			zap.String("meeting_id", meetingID.String()),
			zap.String("agent_id", meeting.AgentID.String()),
		)
	}

	// The meeting is already active at this point. A connector failure is
	// logged rather than surfaced so the provider does not retry the event
	// against a meeting that can no longer accept it.
	err = s.videoClient.ConnectAgent(ctx, meetingID.String(), stream.ConnectAgentOptions{
		AgentUserID:  meeting.AgentID.String(),
		Instructions: meeting.Agent.Instructions,
		Model:        s.llmCfg.RealtimeModel,
		Voice:        s.llmCfg.Voice,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to connect realtime agent",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}

	return nil
}

// OnParticipantLeft ends the call so the remaining agent does not keep an
// empty session open
func (s *service) OnParticipantLeft(ctx context.Context, meetingID uuid.UUID) error {
	if err := s.videoClient.EndCall(ctx, meetingID.String()); err != nil {
		return apperrors.ErrVideoIntegrationFailed(err)
	}

	if s.logger != nil {
		s.logger.Info("👋 Participant left, call ended",
			zap.String("meeting_id", meetingID.String()),
		)
	}
	return nil
}

// OnCallEnded moves an active meeting into processing. Meetings not in the
// active status are left untouched, so duplicate end events are no-ops.
func (s *service) OnCallEnded(ctx context.Context, meetingID uuid.UUID) error {
	now := time.Now()
	ok, err := s.meetingRepo.ApplyTransition(ctx, meetingID,
		AllowedSources(entities.MeetingStatusProcessing),
		entities.MeetingStatusProcessing,
		repositories.MeetingPatch{"ended_at": now},
	)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}

	if s.logger != nil {
		if ok {
			s.logger.Info("🏁 Call ended, meeting processing",
				zap.String("meeting_id", meetingID.String()),
			)
		} else {
			s.logger.Info("⏭️ Call ended for non-active meeting, skipping",
				zap.String("meeting_id", meetingID.String()),
			)
		}
	}
	return nil
}

// OnTranscriptionReady stores the transcript location and enqueues the
// post-meeting analysis job
func (s *service) OnTranscriptionReady(ctx context.Context, meetingID uuid.UUID, transcriptURL string) error {
	storedURL := transcriptURL
	if s.archiver != nil {
		objectName := fmt.Sprintf("transcripts/%s.jsonl", meetingID)
		archivedURL, err := s.archiver.ArchiveFromURL(ctx, objectName, transcriptURL, "application/x-ndjson")
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to archive transcript, keeping provider URL",
					zap.String("meeting_id", meetingID.String()),
					zap.Error(err),
				)
			}
		} else {
			storedURL = archivedURL
		}
	}

	ok, err := s.meetingRepo.SetTranscriptURL(ctx, meetingID, storedURL)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	if !ok {
		return apperrors.ErrMeetingNotFound(meetingID.String())
	}

	err = s.jobClient.Send(ctx, jobs.Event{
		Name: ProcessingEventName,
		Data: map[string]interface{}{
			"meeting_id":     meetingID.String(),
			"transcript_url": storedURL,
		},
	})
	if err != nil {
		return apperrors.ErrJobEnqueueFailed(err)
	}

	if s.logger != nil {
		s.logger.Info("📝 Transcript ready, processing enqueued",
			zap.String("meeting_id", meetingID.String()),
		)
	}
	return nil
}

// OnRecordingReady stores the recording location. Unknown meeting ids are
// ignored the same way the provider treats fire-and-forget notifications.
func (s *service) OnRecordingReady(ctx context.Context, meetingID uuid.UUID, recordingURL string) error {
	storedURL := recordingURL
	if s.archiver != nil {
		objectName := fmt.Sprintf("recordings/%s.mp4", meetingID)
		archivedURL, err := s.archiver.ArchiveFromURL(ctx, objectName, recordingURL, "video/mp4")
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to archive recording, keeping provider URL",
					zap.String("meeting_id", meetingID.String()),
					zap.Error(err),
				)
			}
		} else {
			storedURL = archivedURL
		}
	}

	if _, err := s.meetingRepo.SetRecordingURL(ctx, meetingID, storedURL); err != nil {
		return apperrors.ErrQueryFailed(err)
	}

	if s.logger != nil {
		s.logger.Info("🎥 Recording ready",
			zap.String("meeting_id", meetingID.String()),
		)
	}
	return nil
}
