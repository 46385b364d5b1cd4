package events

import (
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/logging"
)

type SessionTracer struct{}

type SessionReason string

const (
	SessionReasonQuit       SessionReason = "quit"
	SessionReasonDisconnect SessionReason = "disconnect"
	SessionReasonError      SessionReason = "error"
	SessionReasonNoPty      SessionReason = "no-pty"
)

var Session = SessionTracer{}

func (SessionTracer) Start(remote, user, term string, cols, rows int) {
	logging.Info("session started", "remote", remote, "user", user)
	logging.Trace("session.start", map[string]interface{}{
		"remote": remote,
		"user":   user,
		"term":   term,
		"cols":   cols,
		"rows":   rows,
	})
}

func (SessionTracer) End(remote string, reason SessionReason, elapsed time.Duration) {
	logging.Info("session ended", "remote", remote, "reason", string(reason), "duration", elapsed.Round(time.Millisecond))
	logging.Trace("session.end", map[string]interface{}{
		"remote":   remote,
		"reason":   string(reason),
		"duration": elapsed.String(),
	})
}

func (SessionTracer) Resize(remote string, cols, rows int) {
	logging.Trace("session.resize", map[string]interface{}{"remote": remote, "cols": cols, "rows": rows})
}

func (SessionTracer) Input(remote string, raw []byte, keys []string) {
	logging.Trace("session.input", map[string]interface{}{"remote": remote, "bytes": len(raw), "keys": keys})
}
