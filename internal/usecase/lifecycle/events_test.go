package lifecycle

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestParseEvent_SessionStarted(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.session_started","call":{"custom":{"meetingId":"%s"}}}`, id)

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	started, ok := event.(CallSessionStartedEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if started.MeetingID != id {
		t.Fatalf("unexpected meeting id %s", started.MeetingID)
	}
}

func TestParseEvent_SessionStartedMissingMeetingID(t *testing.T) {
	payload := `{"type":"call.session_started","call":{"custom":{}}}`
	if _, err := ParseEvent([]byte(payload)); err == nil {
		t.Fatal("expected error for missing meetingId")
	}
}

func TestParseEvent_SessionStartedInvalidMeetingID(t *testing.T) {
	payload := `{"type":"call.session_started","call":{"custom":{"meetingId":"not-a-uuid"}}}`
	if _, err := ParseEvent([]byte(payload)); err == nil {
		t.Fatal("expected error for invalid meetingId")
	}
}

func TestParseEvent_ParticipantLeft(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.session_participant_left","call_cid":"default:%s"}`, id)

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	left, ok := event.(ParticipantLeftEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if left.MeetingID != id {
		t.Fatalf("unexpected meeting id %s", left.MeetingID)
	}
}

func TestParseEvent_MalformedCallCID(t *testing.T) {
	for _, cid := range []string{"", "no-separator", "default:"} {
		payload := fmt.Sprintf(`{"type":"call.session_participant_left","call_cid":"%s"}`, cid)
		if _, err := ParseEvent([]byte(payload)); err == nil {
			t.Errorf("expected error for call_cid %q", cid)
		}
	}
}

func TestParseEvent_SessionEnded(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.session_ended","call":{"custom":{"meetingId":"%s"}}}`, id)

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := event.(CallSessionEndedEvent); !ok {
		t.Fatalf("unexpected event type %T", event)
	}
}

func TestParseEvent_TranscriptionReady(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.transcription_ready","call_cid":"default:%s","call_transcription":{"url":"https://cdn.example.com/t.jsonl"}}`, id)

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ready, ok := event.(TranscriptionReadyEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if ready.TranscriptURL != "https://cdn.example.com/t.jsonl" {
		t.Fatalf("unexpected url %s", ready.TranscriptURL)
	}
}

func TestParseEvent_TranscriptionReadyMissingURL(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.transcription_ready","call_cid":"default:%s"}`, id)
	if _, err := ParseEvent([]byte(payload)); err == nil {
		t.Fatal("expected error for missing transcription url")
	}
}

func TestParseEvent_RecordingReady(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"type":"call.recording_ready","call_cid":"default:%s","call_recording":{"url":"https://cdn.example.com/r.mp4"}}`, id)

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ready, ok := event.(RecordingReadyEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if ready.RecordingURL != "https://cdn.example.com/r.mp4" {
		t.Fatalf("unexpected url %s", ready.RecordingURL)
	}
}

func TestParseEvent_MessageNew(t *testing.T) {
	payload := `{"type":"message.new","user":{"id":"user-1"},"channel_id":"channel-1","message":{"id":"msg-1","text":"what was decided?"}}`

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	msg, ok := event.(MessageNewEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if msg.MessageID != "msg-1" || msg.UserID != "user-1" || msg.ChannelID != "channel-1" || msg.Text != "what was decided?" {
		t.Fatalf("unexpected event fields: %+v", msg)
	}
}

func TestParseEvent_MessageNewMissingFields(t *testing.T) {
	cases := []string{
		`{"type":"message.new","channel_id":"c","message":{"id":"m","text":"t"}}`,
		`{"type":"message.new","user":{"id":"u"},"message":{"id":"m","text":"t"}}`,
		`{"type":"message.new","user":{"id":"u"},"channel_id":"c","message":{"id":"m"}}`,
		`{"type":"message.new","user":{"id":"u"},"channel_id":"c","message":{"text":"t"}}`,
	}
	for i, payload := range cases {
		if _, err := ParseEvent([]byte(payload)); err == nil {
			t.Errorf("case %d: expected error for missing field", i)
		}
	}
}

func TestParseEvent_UnknownType(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"call.rejected"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	unknown, ok := event.(UnknownEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if unknown.RawType != "call.rejected" {
		t.Fatalf("unexpected raw type %s", unknown.RawType)
	}
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParseEvent_MissingType(t *testing.T) {
	if _, err := ParseEvent([]byte(`{}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
}
