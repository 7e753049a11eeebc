package services

import (
	"gamelounge/domain/presence"
	presencepkg "gamelounge/presence"
	"gamelounge/store"
)

type IPresenceService interface {
	Beat(userID string)
	SetStatus(userID string, status presence.StatusType, message string) error
	OnlineCount() int
}

type PresenceService struct {
	tracker    *presencepkg.Tracker
	repo       store.IPresenceRepository
	aggregator *presencepkg.Aggregator
}

func NewPresenceService(tracker *presencepkg.Tracker, repo store.IPresenceRepository, aggregator *presencepkg.Aggregator) *PresenceService {
	return &PresenceService{tracker: tracker, repo: repo, aggregator: aggregator}
}

func (s *PresenceService) Beat(userID string) {
	s.tracker.Beat(userID)
}

func (s *PresenceService) SetStatus(userID string, status presence.StatusType, message string) error {
	return s.repo.SetStatus(userID, status, message)
}

func (s *PresenceService) OnlineCount() int {
	return s.aggregator.OnlineCount()
}
