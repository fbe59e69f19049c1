package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJobBegin_MetadataRoundTrip(t *testing.T) {
	jobID := uuid.New()

	ctx, cancel := JobBegin(context.Background(), jobID, "meetings/processing", 3)
	defer cancel()

	meta := GetJobMetadata(ctx)
	if meta.JobID != jobID {
		t.Fatalf("unexpected job id %s", meta.JobID)
	}
	if meta.JobName != "meetings/processing" {
		t.Fatalf("unexpected job name %s", meta.JobName)
	}
	if meta.WorkerID != 3 {
		t.Fatalf("unexpected worker id %d", meta.WorkerID)
	}
	if meta.StartTime.IsZero() {
		t.Fatal("start time must be set")
	}

	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("job context must carry a deadline")
	}
}

func TestGetJobMetadata_BareContext(t *testing.T) {
	meta := GetJobMetadata(context.Background())
	if meta.JobID != uuid.Nil || meta.JobName != "" {
		t.Fatal("bare context must yield zero metadata")
	}
	if meta.WorkerID != -1 {
		t.Fatalf("expected worker id -1, got %d", meta.WorkerID)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("deadlock detected"), true},
		{errors.New("429 too many requests"), true},
		{errors.New("invalid meeting_id in payload"), false},
		{errors.New("record not found"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.retryable {
			t.Fatalf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}

func TestJobBegin_Timeout(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "meetings/processing", 0)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if remaining := time.Until(deadline); remaining > 5*time.Minute {
		t.Fatalf("deadline too far out: %s", remaining)
	}
}
