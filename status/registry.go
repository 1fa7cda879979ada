// Package status holds the counters and flags shown on the status bar
package status

import (
	"fmt"
	"sync/atomic"
)

// Well-known metric keys
const (
	EventsAnimated   = "events.animated"
	EventsFailed     = "events.failed"
	EventsDuplicate  = "events.duplicate"
	EventsQueued     = "events.queued"
	BattlesPending   = "battle.pending"
	BattlesResolved  = "battle.resolved"
	BattlesAbandoned = "battle.abandoned"
	SlotsLocked      = "slots.locked"
	SnapshotsApplied = "feed.snapshots"
	SequencerRunning = "sequencer.running"
	FeedConnected    = "feed.connected"
	SnapshotVersion  = "feed.version"
	LastEventType    = "event.last"
)

// Registry is the metrics facade shared by a session
// Components cache pointers at construction and write atomics directly
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Flags    *MetricMap[atomic.Bool]
	Labels   *MetricMap[Label]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Flags:    NewMetricMap[atomic.Bool](),
		Labels:   NewMetricMap[Label](),
	}
}

// TotalCount returns the number of registered metrics of every kind
func (r *Registry) TotalCount() int {
	return r.Counters.Count() + r.Flags.Count() + r.Labels.Count()
}

// Lines renders every metric as "key=value", counters first, each group in key order
func (r *Registry) Lines() []string {
	var out []string
	r.Counters.Range(func(k string, v *atomic.Int64) {
		out = append(out, fmt.Sprintf("%s=%d", k, v.Load()))
	})
	r.Flags.Range(func(k string, v *atomic.Bool) {
		out = append(out, fmt.Sprintf("%s=%t", k, v.Load()))
	})
	r.Labels.Range(func(k string, v *Label) {
		out = append(out, fmt.Sprintf("%s=%s", k, v.Load()))
	})
	return out
}
