package events

import "github.com/atomicstack/hn-over-ssh/internal/logging"

type CacheTracer struct{}

var Cache = CacheTracer{}

func (CacheTracer) Refresh(region string, key int, count int) {
	logging.Trace("cache.refresh", map[string]interface{}{"region": region, "key": key, "count": count})
}

func (CacheTracer) Stale(region string, key int, err error) {
	logging.Warn("serving stale content", "region", region, "key", key, "err", err)
	logging.Trace("cache.stale", map[string]interface{}{"region": region, "key": key, "error": errString(err)})
}

func (CacheTracer) Unavailable(region string, key int, err error) {
	logging.Warn("content unavailable", "region", region, "key", key, "err", err)
	logging.Trace("cache.unavailable", map[string]interface{}{"region": region, "key": key, "error": errString(err)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (CacheTracer) Summary(hits, refreshes, stale, unavailable, items int) {
	logging.Info("cache summary", "hits", hits, "refreshes", refreshes, "stale", stale, "unavailable", unavailable, "items", items)
	logging.Trace("cache.summary", map[string]interface{}{
		"hits":        hits,
		"refreshes":   refreshes,
		"stale":       stale,
		"unavailable": unavailable,
		"items":       items,
	})
}
