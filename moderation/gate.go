package moderation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"

	"gamelounge/errors"
)

// Gate combines the rate check and the profanity check. It applies to the
// Global Lounge only; direct messages deliberately bypass it.
type Gate struct {
	classifier *Classifier
	log        *slog.Logger
}

func NewGate(classifier *Classifier, log *slog.Logger) *Gate {
	return &Gate{classifier: classifier, log: log}
}

// Admit decides whether a send may proceed. On admission the caller's
// window is extended with now; a rejection leaves the window untouched.
// The only side effect is that window mutation.
func (g *Gate) Admit(callerID string, window *Window, text string, now time.Time) error {
	if !window.Allow(now) {
		return fmt.Errorf("%w: more than %d sends in %s", errors.ErrRateLimited, SpamLimit, SpamWindow)
	}

	if found := g.classifier.Detect(text); len(found) > 0 {
		info := whatlanggo.Detect(text)
		g.log.Info("Message rejected by content filter",
			"caller", callerID,
			"terms", len(found),
			"lang", info.Lang.Iso6391())
		return fmt.Errorf("%w: banned term", errors.ErrContentRejected)
	}

	window.Record(now)
	return nil
}
