package status

import (
	"strings"
	"sync"
	"testing"
)

func TestMetricMapReturnsStablePointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counters.Get(EventsAnimated)
	b := r.Counters.Get(EventsAnimated)
	if a != b {
		t.Fatal("Get returned different pointers for the same key")
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counters.Get(EventsAnimated).Add(1)
		}()
	}
	wg.Wait()

	if got := a.Load(); got != 50 {
		t.Errorf("counter = %d, want 50", got)
	}
}

func TestRegistryLines(t *testing.T) {
	r := NewRegistry()
	r.Counters.Get(EventsFailed).Store(2)
	r.Counters.Get(EventsAnimated).Store(7)
	r.Flags.Get(SequencerRunning).Store(true)
	r.Labels.Get(LastEventType).Store("BATTLE_RESOLVED_WITH_A_VERY_LONG_SUFFIX")

	got := r.Lines()
	want := []string{
		"events.animated=7",
		"events.failed=2",
		"sequencer.running=true",
		"event.last=BATTLE_RESOLVED_WITH_A_V",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
	if r.TotalCount() != 4 {
		t.Errorf("TotalCount = %d, want 4", r.TotalCount())
	}
}
