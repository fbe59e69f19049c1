package entities

// TranscriptItem is one line of a line-delimited JSON transcript as delivered
// by the call provider. Items are ephemeral pipeline data, never persisted.
type TranscriptItem struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	StartTs   int64  `json:"start_ts"`
	StopTs    int64  `json:"stop_ts"`
}

// SpeakerName is the display identity resolved for a transcript item
type SpeakerName struct {
	Name string `json:"name"`
}

// TranscriptItemWithSpeaker is a transcript item enriched with the resolved
// speaker display name. Speakers may be users or agents; unresolved speaker
// ids fall back to a placeholder name.
type TranscriptItemWithSpeaker struct {
	TranscriptItem
	User SpeakerName `json:"user"`
}
