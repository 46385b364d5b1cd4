package events

import "github.com/atomicstack/hn-over-ssh/internal/logging"

type NavTracer struct{}

var Nav = NavTracer{}

func (NavTracer) Transition(from, to, key string) {
	logging.Trace("nav.transition", map[string]interface{}{"from": from, "to": to, "key": key})
}

func (NavTracer) Cursor(cursor, total int) {
	logging.Trace("nav.cursor", map[string]interface{}{"cursor": cursor, "total": total})
}

func (NavTracer) Open(id int) {
	logging.Trace("nav.open", map[string]interface{}{"item": id})
}
