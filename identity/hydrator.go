package identity

import (
	"context"
	"log/slog"

	"gamelounge/domain"
	"gamelounge/store"
)

// Hydrator resolves display identities as optional decoration. A failed or
// slow lookup yields absence, never an error: the message body must stay
// visible when decoration cannot resolve.
type Hydrator struct {
	profiles store.IProfileRepository
	log      *slog.Logger
}

func NewHydrator(profiles store.IProfileRepository, log *slog.Logger) *Hydrator {
	return &Hydrator{profiles: profiles, log: log}
}

func (h *Hydrator) Display(ctx context.Context, userID string) domain.Maybe[domain.DisplayIdentity] {
	identity, err := h.profiles.Get(ctx, userID)
	if err != nil {
		h.log.Debug("Display identity unavailable", "user", userID, "err", err)
		return domain.None[domain.DisplayIdentity]()
	}
	return domain.Some(identity)
}
