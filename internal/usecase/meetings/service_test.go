package meetings

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/external/stream"
)

type fakeMeetingRepo struct {
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo(meetings ...*entities.Meeting) *fakeMeetingRepo {
	repo := &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
	for _, m := range meetings {
		repo.meetings[m.ID] = m
	}
	return repo
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return r.meetings[id], nil
}

func (r *fakeMeetingRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*entities.Meeting, error) {
	m := r.meetings[id]
	if m == nil || m.UserID != userID {
		return nil, nil
	}
	return m, nil
}

func (r *fakeMeetingRepo) FindByIDWithStatus(_ context.Context, id uuid.UUID, status entities.MeetingStatus) (*entities.Meeting, error) {
	m := r.meetings[id]
	if m == nil || m.Status != status {
		return nil, nil
	}
	return m, nil
}

func (r *fakeMeetingRepo) List(_ context.Context, _ repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	out := make([]*entities.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.meetings, id)
	return nil
}

func (r *fakeMeetingRepo) CountByAgentID(_ context.Context, agentID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.meetings {
		if m.AgentID == agentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMeetingRepo) ApplyTransition(_ context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus, _ repositories.MeetingPatch) (bool, error) {
	m := r.meetings[id]
	if m == nil {
		return false, nil
	}
	for _, status := range from {
		if m.Status == status {
			m.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMeetingRepo) SetTranscriptURL(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeMeetingRepo) SetRecordingURL(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

type fakeAgentRepo struct {
	agents map[uuid.UUID]*entities.Agent
}

func (r *fakeAgentRepo) Create(_ context.Context, a *entities.Agent) error {
	r.agents[a.ID] = a
	return nil
}

func (r *fakeAgentRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Agent, error) {
	return r.agents[id], nil
}

func (r *fakeAgentRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*entities.Agent, error) {
	a := r.agents[id]
	if a == nil || a.UserID != userID {
		return nil, nil
	}
	return a, nil
}

func (r *fakeAgentRepo) FindByIDs(_ context.Context, _ []uuid.UUID) ([]*entities.Agent, error) {
	return nil, nil
}

func (r *fakeAgentRepo) List(_ context.Context, _ repositories.AgentFilters) ([]*entities.Agent, int64, error) {
	return nil, 0, nil
}

func (r *fakeAgentRepo) Update(_ context.Context, _ *entities.Agent) error { return nil }
func (r *fakeAgentRepo) Delete(_ context.Context, _ uuid.UUID) error       { return nil }

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	var appErr apperrors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code)
	}
}

type fixture struct {
	userID  uuid.UUID
	agent   *entities.Agent
	repo    *fakeMeetingRepo
	agents  *fakeAgentRepo
	chat    *stream.MockChatClient
	service *MeetingService
}

func newFixture(meetings ...*entities.Meeting) *fixture {
	userID := uuid.New()
	agent := &entities.Agent{ID: uuid.New(), UserID: userID, Name: "Scrum Bot", Instructions: "Keep it short."}
	repo := newFakeMeetingRepo(meetings...)
	agents := &fakeAgentRepo{agents: map[uuid.UUID]*entities.Agent{agent.ID: agent}}
	chatClient := &stream.MockChatClient{}
	service := NewMeetingService(repo, agents, &stream.MockVideoClient{}, chatClient)
	return &fixture{userID: userID, agent: agent, repo: repo, agents: agents, chat: chatClient, service: service}
}

func TestCreateMeeting(t *testing.T) {
	f := newFixture()

	meeting, err := f.service.CreateMeeting(context.Background(), CreateMeetingInput{
		UserID:  f.userID,
		Name:    "standup",
		AgentID: f.agent.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if meeting.Status != entities.MeetingStatusUpcoming {
		t.Fatalf("new meetings must be upcoming, got %s", meeting.Status)
	}
	if meeting.Agent == nil || meeting.Agent.ID != f.agent.ID {
		t.Fatal("created meeting must carry its agent")
	}
	if len(f.chat.Upserted) != 1 || f.chat.Upserted[0].ID != f.agent.ID.String() {
		t.Fatal("agent chat identity must be registered")
	}
}

func TestCreateMeeting_ForeignAgent(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateMeeting(context.Background(), CreateMeetingInput{
		UserID:  uuid.New(),
		Name:    "standup",
		AgentID: f.agent.ID,
	})
	assertCode(t, err, apperrors.ErrorCode_AGENT_NOT_FOUND)
}

func TestUpdateMeeting_OnlyUpcoming(t *testing.T) {
	f := newFixture()
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		Name:    "standup",
		UserID:  f.userID,
		AgentID: f.agent.ID,
		Status:  entities.MeetingStatusActive,
	}
	f.repo.meetings[meeting.ID] = meeting

	name := "renamed"
	_, err := f.service.UpdateMeeting(context.Background(), UpdateMeetingInput{
		MeetingID: meeting.ID,
		UserID:    f.userID,
		Name:      &name,
	})
	assertCode(t, err, apperrors.ErrorCode_MEETING_INVALID_STATE)
}

func TestUpdateMeeting_Rename(t *testing.T) {
	f := newFixture()
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		Name:    "standup",
		UserID:  f.userID,
		AgentID: f.agent.ID,
		Status:  entities.MeetingStatusUpcoming,
	}
	f.repo.meetings[meeting.ID] = meeting

	name := "renamed"
	updated, err := f.service.UpdateMeeting(context.Background(), UpdateMeetingInput{
		MeetingID: meeting.ID,
		UserID:    f.userID,
		Name:      &name,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("unexpected name %s", updated.Name)
	}
}

func TestCancelMeeting(t *testing.T) {
	f := newFixture()
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		UserID:  f.userID,
		AgentID: f.agent.ID,
		Status:  entities.MeetingStatusUpcoming,
	}
	f.repo.meetings[meeting.ID] = meeting

	cancelled, err := f.service.CancelMeeting(context.Background(), meeting.ID, f.userID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != entities.MeetingStatusCancelled {
		t.Fatalf("unexpected status %s", cancelled.Status)
	}
}

func TestCancelMeeting_ActiveRejected(t *testing.T) {
	f := newFixture()
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		UserID:  f.userID,
		AgentID: f.agent.ID,
		Status:  entities.MeetingStatusActive,
	}
	f.repo.meetings[meeting.ID] = meeting

	_, err := f.service.CancelMeeting(context.Background(), meeting.ID, f.userID)
	assertCode(t, err, apperrors.ErrorCode_MEETING_INVALID_STATE)
}

func TestDeleteMeeting_InFlightRejected(t *testing.T) {
	for _, status := range []entities.MeetingStatus{
		entities.MeetingStatusActive,
		entities.MeetingStatusProcessing,
	} {
		f := newFixture()
		meeting := &entities.Meeting{
			ID:      uuid.New(),
			UserID:  f.userID,
			AgentID: f.agent.ID,
			Status:  status,
		}
		f.repo.meetings[meeting.ID] = meeting

		err := f.service.DeleteMeeting(context.Background(), meeting.ID, f.userID)
		assertCode(t, err, apperrors.ErrorCode_MEETING_INVALID_STATE)
		if f.repo.meetings[meeting.ID] == nil {
			t.Fatalf("%s meeting must not be deleted", status)
		}
	}
}

func TestDeleteMeeting_SettledStates(t *testing.T) {
	for _, status := range []entities.MeetingStatus{
		entities.MeetingStatusUpcoming,
		entities.MeetingStatusCompleted,
		entities.MeetingStatusCancelled,
	} {
		f := newFixture()
		meeting := &entities.Meeting{
			ID:      uuid.New(),
			UserID:  f.userID,
			AgentID: f.agent.ID,
			Status:  status,
		}
		f.repo.meetings[meeting.ID] = meeting

		if err := f.service.DeleteMeeting(context.Background(), meeting.ID, f.userID); err != nil {
			t.Fatalf("delete of %s meeting failed: %v", status, err)
		}
		if f.repo.meetings[meeting.ID] != nil {
			t.Fatalf("%s meeting must be deleted", status)
		}
	}
}

func TestGetMeeting_OwnershipEnforced(t *testing.T) {
	f := newFixture()
	meeting := &entities.Meeting{
		ID:      uuid.New(),
		UserID:  f.userID,
		AgentID: f.agent.ID,
		Status:  entities.MeetingStatusUpcoming,
	}
	f.repo.meetings[meeting.ID] = meeting

	_, err := f.service.GetMeeting(context.Background(), meeting.ID, uuid.New())
	assertCode(t, err, apperrors.ErrorCode_MEETING_NOT_FOUND)
}

func TestJoinToken(t *testing.T) {
	f := newFixture()

	token, err := f.service.JoinToken(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("join token failed: %v", err)
	}
	if token == "" {
		t.Fatal("token must not be empty")
	}
}
