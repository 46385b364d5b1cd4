package events

import "github.com/atomicstack/hn-over-ssh/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Listen(addr, mode string) {
	logging.Info("listening for connections", "addr", addr, "mode", mode)
	logging.Trace("app.listen", map[string]interface{}{"addr": addr, "mode": mode})
}

func (AppTracer) Stop(reason string) {
	logging.Info("shutting down", "reason", reason)
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}
