package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/jobs"
	"github.com/meetai-dev/meetai-backend/pkg/ai"
)

type fakeMeetingRepo struct {
	meetings map[uuid.UUID]*entities.Meeting
}

func (r *fakeMeetingRepo) Create(_ context.Context, _ *entities.Meeting) error { return nil }

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return r.meetings[id], nil
}

func (r *fakeMeetingRepo) FindByIDForUser(_ context.Context, id, _ uuid.UUID) (*entities.Meeting, error) {
	return r.meetings[id], nil
}

func (r *fakeMeetingRepo) FindByIDWithStatus(_ context.Context, id uuid.UUID, status entities.MeetingStatus) (*entities.Meeting, error) {
	m := r.meetings[id]
	if m == nil || m.Status != status {
		return nil, nil
	}
	return m, nil
}

func (r *fakeMeetingRepo) List(_ context.Context, _ repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	return nil, 0, nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, _ *entities.Meeting) error { return nil }
func (r *fakeMeetingRepo) Delete(_ context.Context, _ uuid.UUID) error         { return nil }

func (r *fakeMeetingRepo) CountByAgentID(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeMeetingRepo) ApplyTransition(_ context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus, patch repositories.MeetingPatch) (bool, error) {
	m := r.meetings[id]
	if m == nil {
		return false, nil
	}
	allowed := false
	for _, status := range from {
		if m.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	m.Status = to
	if summary, ok := patch["summary"].(string); ok {
		m.Summary = &summary
	}
	return true, nil
}

func (r *fakeMeetingRepo) SetTranscriptURL(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeMeetingRepo) SetRecordingURL(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *entities.User) error { return nil }

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*entities.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	var out []*entities.User
	for _, id := range ids {
		if u := r.users[id]; u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *entities.User) error { return nil }

type fakeAgentRepo struct {
	agents map[uuid.UUID]*entities.Agent
}

func (r *fakeAgentRepo) Create(_ context.Context, _ *entities.Agent) error { return nil }

func (r *fakeAgentRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Agent, error) {
	return r.agents[id], nil
}

func (r *fakeAgentRepo) FindByIDForUser(_ context.Context, id, _ uuid.UUID) (*entities.Agent, error) {
	return r.agents[id], nil
}

func (r *fakeAgentRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Agent, error) {
	var out []*entities.Agent
	for _, id := range ids {
		if a := r.agents[id]; a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAgentRepo) List(_ context.Context, _ repositories.AgentFilters) ([]*entities.Agent, int64, error) {
	return nil, 0, nil
}

func (r *fakeAgentRepo) Update(_ context.Context, _ *entities.Agent) error { return nil }
func (r *fakeAgentRepo) Delete(_ context.Context, _ uuid.UUID) error       { return nil }

type fakeCompleter struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.Message, _ float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(messages) > 0 {
		f.prompt = messages[len(messages)-1].Content
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeJobRepo mirrors the runner's claim/checkpoint semantics in memory
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entities.ProcessingJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entities.ProcessingJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *entities.ProcessingJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id], nil
}

func (r *fakeJobRepo) ClaimNextPending(_ context.Context, names []string) (*entities.ProcessingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.Status != entities.ProcessingJobStatusPending {
			continue
		}
		for _, name := range names {
			if job.Name == name {
				now := time.Now()
				job.Status = entities.ProcessingJobStatusRunning
				job.ClaimedAt = &now
				return job, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) UpdateCheckpoints(_ context.Context, id uuid.UUID, checkpoints datatypes.JSONMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job := r.jobs[id]; job != nil {
		job.Checkpoints = checkpoints
	}
	return nil
}

func (r *fakeJobRepo) MarkCompleted(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job := r.jobs[id]; job != nil {
		job.Status = entities.ProcessingJobStatusCompleted
	}
	return nil
}

func (r *fakeJobRepo) MarkFailed(_ context.Context, id uuid.UUID, jobErr string, retryable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	if job == nil {
		return nil
	}
	job.LastError = &jobErr
	if retryable {
		job.Status = entities.ProcessingJobStatusPending
		job.RetryCount++
	} else {
		job.Status = entities.ProcessingJobStatusFailed
	}
	return nil
}

func (r *fakeJobRepo) ResetStuck(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func transcriptServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, strings.Join(lines, "\n"))
	}))
}

func TestHandle_FullPipeline(t *testing.T) {
	user := &entities.User{ID: uuid.New(), Name: "Ada"}
	agent := &entities.Agent{ID: uuid.New(), Name: "Scrum Bot"}
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		AgentID: agent.ID,
		Status:  entities.MeetingStatusProcessing,
	}

	ts := transcriptServer(t,
		fmt.Sprintf(`{"speaker_id":"%s","text":"let's ship Friday","start_ts":0,"stop_ts":4}`, user.ID),
		fmt.Sprintf(`{"speaker_id":"%s","text":"noted","start_ts":4,"stop_ts":6}`, agent.ID),
		`{"speaker_id":"ghost","text":"who am i","start_ts":6,"stop_ts":8}`,
	)
	defer ts.Close()

	llm := &fakeCompleter{reply: "### Overview\nShip on Friday."}
	svc := NewService(
		&fakeMeetingRepo{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}},
		&fakeUserRepo{users: map[uuid.UUID]*entities.User{user.ID: user}},
		&fakeAgentRepo{agents: map[uuid.UUID]*entities.Agent{agent.ID: agent}},
		llm,
		nil,
		nil,
	)

	jobRepo := newFakeJobRepo()
	runner := jobs.NewRunner(jobRepo, nil, 1, 0)
	svc.Register(runner)

	client := jobs.NewClient(jobRepo, nil)
	err := client.Send(context.Background(), jobs.Event{
		Name: "meetings/processing",
		Data: map[string]interface{}{
			"meeting_id":     meeting.ID.String(),
			"transcript_url": ts.URL,
		},
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	ran, err := runner.RunOne(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ran {
		t.Fatal("expected the job to run")
	}

	if meeting.Status != entities.MeetingStatusCompleted {
		t.Fatalf("expected completed status, got %s", meeting.Status)
	}
	if meeting.Summary == nil || *meeting.Summary != "### Overview\nShip on Friday." {
		t.Fatal("summary must be saved")
	}

	// The summarization prompt carries resolved speaker names.
	if !strings.Contains(llm.prompt, "Ada") || !strings.Contains(llm.prompt, "Scrum Bot") {
		t.Fatalf("prompt must carry resolved speakers, got %q", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "Unknown") {
		t.Fatalf("unresolved speakers must fall back to Unknown, got %q", llm.prompt)
	}

	var jobID uuid.UUID
	for id := range jobRepo.jobs {
		jobID = id
	}
	job, _ := jobRepo.FindByID(context.Background(), jobID)
	if job.Status != entities.ProcessingJobStatusCompleted {
		t.Fatalf("expected completed job, got %s", job.Status)
	}
	for _, step := range []string{"fetch-transcript", "parse-transcript", "add-speakers", "save-summary"} {
		if _, ok := job.Checkpoints[step]; !ok {
			t.Errorf("missing checkpoint for step %s", step)
		}
	}
}

func TestHandle_LLMFailureSavesSentinel(t *testing.T) {
	meeting := &entities.Meeting{
		ID:     uuid.New(),
		Status: entities.MeetingStatusProcessing,
	}

	ts := transcriptServer(t, `{"speaker_id":"u1","text":"hello","start_ts":0,"stop_ts":2}`)
	defer ts.Close()

	llm := &fakeCompleter{err: fmt.Errorf("model offline")}
	svc := NewService(
		&fakeMeetingRepo{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}},
		&fakeUserRepo{},
		&fakeAgentRepo{},
		llm,
		nil,
		nil,
	)

	jobRepo := newFakeJobRepo()
	runner := jobs.NewRunner(jobRepo, nil, 1, 0)
	svc.Register(runner)

	jobs.NewClient(jobRepo, nil).Send(context.Background(), jobs.Event{
		Name: "meetings/processing",
		Data: map[string]interface{}{
			"meeting_id":     meeting.ID.String(),
			"transcript_url": ts.URL,
		},
	})

	if _, err := runner.RunOne(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if meeting.Status != entities.MeetingStatusCompleted {
		t.Fatalf("meeting must still complete, got %s", meeting.Status)
	}
	if meeting.Summary == nil || *meeting.Summary != "Summary unavailable" {
		t.Fatal("sentinel summary must be saved")
	}
}

func TestAddSpeakers_Fallbacks(t *testing.T) {
	named := &entities.User{ID: uuid.New(), Name: "Ada"}
	unnamed := &entities.User{ID: uuid.New(), Name: ""}

	svc := NewService(
		&fakeMeetingRepo{},
		&fakeUserRepo{users: map[uuid.UUID]*entities.User{named.ID: named, unnamed.ID: unnamed}},
		&fakeAgentRepo{},
		&fakeCompleter{},
		nil,
		nil,
	)

	transcript := []entities.TranscriptItem{
		{SpeakerID: named.ID.String(), Text: "a"},
		{SpeakerID: unnamed.ID.String(), Text: "b"},
		{SpeakerID: uuid.NewString(), Text: "c"},
		{SpeakerID: "not-a-uuid", Text: "d"},
	}

	out, err := svc.addSpeakers(context.Background(), transcript)
	if err != nil {
		t.Fatalf("addSpeakers failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 items, got %d", len(out))
	}
	if out[0].User.Name != "Ada" {
		t.Fatalf("expected Ada, got %q", out[0].User.Name)
	}
	if out[1].User.Name != "Unnamed Speaker" {
		t.Fatalf("expected Unnamed Speaker, got %q", out[1].User.Name)
	}
	if out[2].User.Name != "Unknown" {
		t.Fatalf("expected Unknown, got %q", out[2].User.Name)
	}
	if out[3].User.Name != "Unknown" {
		t.Fatalf("expected Unknown for non-uuid speaker, got %q", out[3].User.Name)
	}
}

type fakeArchiver struct {
	texts map[string]string
	err   error
}

func (a *fakeArchiver) ArchiveFromURL(_ context.Context, objectName, _, _ string) (string, error) {
	return "https://cdn.example.com/" + objectName, a.err
}

func (a *fakeArchiver) ArchiveText(_ context.Context, objectName, content string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.texts == nil {
		a.texts = make(map[string]string)
	}
	a.texts[objectName] = content
	return "https://cdn.example.com/" + objectName, nil
}

func TestArchiveSummary(t *testing.T) {
	archiver := &fakeArchiver{}
	svc := NewService(
		&fakeMeetingRepo{},
		&fakeUserRepo{},
		&fakeAgentRepo{},
		&fakeCompleter{},
		archiver,
		nil,
	)

	meetingID := uuid.New()
	svc.archiveSummary(context.Background(), meetingID, "### Overview\nShip on Friday.")

	objectName := "summaries/" + meetingID.String() + ".md"
	if archiver.texts[objectName] != "### Overview\nShip on Friday." {
		t.Fatalf("summary must be mirrored into storage, got %v", archiver.texts)
	}

	// The sentinel text carries no value and is not archived.
	svc.archiveSummary(context.Background(), uuid.New(), "Summary unavailable")
	if len(archiver.texts) != 1 {
		t.Fatalf("sentinel summaries must not be archived, got %v", archiver.texts)
	}
}

func TestArchiveSummary_FailureSwallowed(t *testing.T) {
	meeting := &entities.Meeting{
		ID:     uuid.New(),
		Status: entities.MeetingStatusProcessing,
	}

	ts := transcriptServer(t, `{"speaker_id":"u1","text":"hello","start_ts":0,"stop_ts":2}`)
	defer ts.Close()

	svc := NewService(
		&fakeMeetingRepo{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}},
		&fakeUserRepo{},
		&fakeAgentRepo{},
		&fakeCompleter{reply: "### Overview\nFine."},
		&fakeArchiver{err: fmt.Errorf("bucket offline")},
		nil,
	)

	jobRepo := newFakeJobRepo()
	runner := jobs.NewRunner(jobRepo, nil, 1, 0)
	svc.Register(runner)

	jobs.NewClient(jobRepo, nil).Send(context.Background(), jobs.Event{
		Name: "meetings/processing",
		Data: map[string]interface{}{
			"meeting_id":     meeting.ID.String(),
			"transcript_url": ts.URL,
		},
	})

	if _, err := runner.RunOne(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if meeting.Status != entities.MeetingStatusCompleted {
		t.Fatalf("archive failure must not block completion, got %s", meeting.Status)
	}
}

func TestSaveSummary_AlreadyCompletedIsNoOp(t *testing.T) {
	summary := "old summary"
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		Status:  entities.MeetingStatusCompleted,
		Summary: &summary,
	}

	svc := NewService(
		&fakeMeetingRepo{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}},
		&fakeUserRepo{},
		&fakeAgentRepo{},
		&fakeCompleter{},
		nil,
		nil,
	)

	if err := svc.saveSummary(context.Background(), meeting.ID, "new summary"); err != nil {
		t.Fatalf("redundant save must not fail: %v", err)
	}
	if *meeting.Summary != "old summary" {
		t.Fatal("existing summary must not be overwritten")
	}
}
