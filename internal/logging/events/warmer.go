package events

import (
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/logging"
)

type WarmerTracer struct{}

var Warmer = WarmerTracer{}

func (WarmerTracer) Cycle(stories, items int, elapsed time.Duration) {
	logging.Trace("warmer.cycle", map[string]interface{}{
		"stories":  stories,
		"items":    items,
		"duration": elapsed.String(),
	})
}
