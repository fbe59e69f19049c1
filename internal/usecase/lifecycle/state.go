package lifecycle

import (
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// transitions is the single source of truth for legal meeting status moves.
// Everything not listed is rejected, including self-transitions, which is
// what makes webhook redelivery a no-op at the persistence layer.
var transitions = map[entities.MeetingStatus][]entities.MeetingStatus{
	entities.MeetingStatusUpcoming:   {entities.MeetingStatusActive, entities.MeetingStatusCancelled},
	entities.MeetingStatusActive:     {entities.MeetingStatusProcessing},
	entities.MeetingStatusProcessing: {entities.MeetingStatusCompleted},
}

// CanTransition reports whether a meeting may move from one status to another
func CanTransition(from, to entities.MeetingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedSources returns every status a meeting may move to the target from
func AllowedSources(to entities.MeetingStatus) []entities.MeetingStatus {
	var sources []entities.MeetingStatus
	for from, targets := range transitions {
		for _, target := range targets {
			if target == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}
