package lifecycle

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
)

// EventType identifies a provider webhook event
type EventType string

const (
	EventCallSessionStarted EventType = "call.session_started"
	EventParticipantLeft    EventType = "call.session_participant_left"
	EventCallSessionEnded   EventType = "call.session_ended"
	EventTranscriptionReady EventType = "call.transcription_ready"
	EventRecordingReady     EventType = "call.recording_ready"
	EventMessageNew         EventType = "message.new"
)

// Event is a decoded provider webhook event
type Event interface {
	Type() EventType
}

// CallSessionStartedEvent fires when the first participant joins a call
type CallSessionStartedEvent struct {
	MeetingID uuid.UUID
}

func (CallSessionStartedEvent) Type() EventType { return EventCallSessionStarted }

// ParticipantLeftEvent fires when a participant leaves an ongoing call
type ParticipantLeftEvent struct {
	MeetingID uuid.UUID
}

func (ParticipantLeftEvent) Type() EventType { return EventParticipantLeft }

// CallSessionEndedEvent fires when a call finishes for all participants
type CallSessionEndedEvent struct {
	MeetingID uuid.UUID
}

func (CallSessionEndedEvent) Type() EventType { return EventCallSessionEnded }

// TranscriptionReadyEvent fires when the provider finishes transcribing
type TranscriptionReadyEvent struct {
	MeetingID     uuid.UUID
	TranscriptURL string
}

func (TranscriptionReadyEvent) Type() EventType { return EventTranscriptionReady }

// RecordingReadyEvent fires when the call recording becomes available
type RecordingReadyEvent struct {
	MeetingID    uuid.UUID
	RecordingURL string
}

func (RecordingReadyEvent) Type() EventType { return EventRecordingReady }

// MessageNewEvent fires when a chat message is posted to a channel
type MessageNewEvent struct {
	MessageID string
	UserID    string
	ChannelID string
	Text      string
}

func (MessageNewEvent) Type() EventType { return EventMessageNew }

// UnknownEvent carries event types this service does not handle
type UnknownEvent struct {
	RawType string
}

func (e UnknownEvent) Type() EventType { return EventType(e.RawType) }

// eventEnvelope matches the provider's wire format across all event types
type eventEnvelope struct {
	Type string `json:"type"`
	Call struct {
		Custom struct {
			MeetingID string `json:"meetingId"`
		} `json:"custom"`
	} `json:"call"`
	CallCID           string `json:"call_cid"`
	CallTranscription struct {
		URL string `json:"url"`
	} `json:"call_transcription"`
	CallRecording struct {
		URL string `json:"url"`
	} `json:"call_recording"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	ChannelID string `json:"channel_id"`
	Message   struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

// ParseEvent decodes a raw webhook payload into a typed event. Unrecognized
// event types decode into UnknownEvent so the caller can acknowledge them
// without acting.
func ParseEvent(payload []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperrors.ErrInvalidPayload(err)
	}
	if env.Type == "" {
		return nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing event type")
	}

	switch EventType(env.Type) {
	case EventCallSessionStarted:
		id, err := requireMeetingID(env.Call.Custom.MeetingID)
		if err != nil {
			return nil, err
		}
		return CallSessionStartedEvent{MeetingID: id}, nil

	case EventParticipantLeft:
		id, err := meetingIDFromCID(env.CallCID)
		if err != nil {
			return nil, err
		}
		return ParticipantLeftEvent{MeetingID: id}, nil

	case EventCallSessionEnded:
		id, err := requireMeetingID(env.Call.Custom.MeetingID)
		if err != nil {
			return nil, err
		}
		return CallSessionEndedEvent{MeetingID: id}, nil

	case EventTranscriptionReady:
		id, err := meetingIDFromCID(env.CallCID)
		if err != nil {
			return nil, err
		}
		if env.CallTranscription.URL == "" {
			return nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing transcription url")
		}
		return TranscriptionReadyEvent{MeetingID: id, TranscriptURL: env.CallTranscription.URL}, nil

	case EventRecordingReady:
		id, err := meetingIDFromCID(env.CallCID)
		if err != nil {
			return nil, err
		}
		if env.CallRecording.URL == "" {
			return nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing recording url")
		}
		return RecordingReadyEvent{MeetingID: id, RecordingURL: env.CallRecording.URL}, nil

	case EventMessageNew:
		if env.User.ID == "" || env.ChannelID == "" || env.Message.Text == "" || env.Message.ID == "" {
			return nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing required fields")
		}
		return MessageNewEvent{
			MessageID: env.Message.ID,
			UserID:    env.User.ID,
			ChannelID: env.ChannelID,
			Text:      env.Message.Text,
		}, nil

	default:
		return UnknownEvent{RawType: env.Type}, nil
	}
}

func requireMeetingID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing meetingId")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidPayload(err).WithDetail("reason", "invalid meetingId")
	}
	return id, nil
}

// meetingIDFromCID extracts the meeting id from a "calltype:id" call cid
func meetingIDFromCID(cid string) (uuid.UUID, error) {
	if cid == "" {
		return uuid.Nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "missing call_cid")
	}
	parts := strings.SplitN(cid, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, apperrors.ErrInvalidPayload(nil).WithDetail("reason", "malformed call_cid")
	}
	return requireMeetingID(parts[1])
}
