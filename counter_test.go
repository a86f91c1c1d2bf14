package vehiclecount

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

// observation holds a single test input and its expected outcome
type observation struct {
	trackID   int64
	classID   int
	frameID   int
	wantOut   ObserveOutcome
	wantLabel string
}

// newTestCounter returns a Counter configured with the COCO vehicle classes
func newTestCounter(t *testing.T) *Counter {
	t.Helper()

	c, err := NewCounter(VehicleClasses())

	if err != nil {
		t.Fatalf("error creating counter: %v", err)
	}

	return c
}

// TestObserveOutcomes runs a frame sequence through the counter and checks
// each observation outcome and the final snapshot
func TestObserveOutcomes(t *testing.T) {

	c := newTestCounter(t)

	obs := []observation{
		{10, 2, 0, NewlyCounted, "car"},
		{11, 5, 0, NewlyCounted, "bus"},
		{10, 2, 1, AlreadyCounted, "car"},
		{12, 9, 1, Ignored, ""},
	}

	for i, o := range obs {
		out, label, err := c.Observe(o.trackID, o.classID, o.frameID)

		if err != nil {
			t.Fatalf("observation %d: unexpected error: %v", i, err)
		}

		if out != o.wantOut || label != o.wantLabel {
			t.Errorf("observation %d: expected (%s, %q), got (%s, %q)",
				i, o.wantOut, o.wantLabel, out, label)
		}
	}

	snap := c.Snapshot()

	if snap.Total != 2 {
		t.Errorf("expected total 2, got %d", snap.Total)
	}

	if snap.Counts["car"] != 1 || snap.Counts["bus"] != 1 {
		t.Errorf("expected car=1 bus=1, got %v", snap.Counts)
	}

	if snap.Counts["motorcycle"] != 0 || snap.Counts["truck"] != 0 {
		t.Errorf("expected zero seeded counts, got %v", snap.Counts)
	}
}

// TestFirstLabelWins checks a track id keeps the label of its first
// recognized sighting even when a later frame reports a different class
func TestFirstLabelWins(t *testing.T) {

	c := newTestCounter(t)

	out, label, _ := c.Observe(5, 2, 0)

	if out != NewlyCounted || label != "car" {
		t.Fatalf("expected (NewlyCounted, car), got (%s, %q)", out, label)
	}

	out, label, _ = c.Observe(5, 7, 1)

	if out != AlreadyCounted || label != "car" {
		t.Errorf("expected (AlreadyCounted, car), got (%s, %q)", out, label)
	}

	snap := c.Snapshot()

	if snap.Counts["car"] != 1 || snap.Counts["truck"] != 0 || snap.Total != 1 {
		t.Errorf("expected car=1 truck=0 total=1, got %v total=%d",
			snap.Counts, snap.Total)
	}
}

// TestIdempotentReplay replays the same observation many times and checks
// the tally never moves past the first sighting
func TestIdempotentReplay(t *testing.T) {

	c := newTestCounter(t)

	if out, _, _ := c.Observe(42, 7, 0); out != NewlyCounted {
		t.Fatalf("expected NewlyCounted, got %s", out)
	}

	for i := 1; i <= 100; i++ {
		out, label, err := c.Observe(42, 7, i)

		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}

		if out != AlreadyCounted || label != "truck" {
			t.Fatalf("frame %d: expected (AlreadyCounted, truck), got (%s, %q)",
				i, out, label)
		}
	}

	snap := c.Snapshot()

	if snap.Counts["truck"] != 1 || snap.Total != 1 {
		t.Errorf("expected truck=1 total=1, got %v total=%d", snap.Counts, snap.Total)
	}
}

// TestUnknownClassLeavesStateUnchanged feeds class ids outside the map and
// checks nothing is recorded
func TestUnknownClassLeavesStateUnchanged(t *testing.T) {

	c := newTestCounter(t)

	for i, classID := range []int{0, 1, 9, 80, 1000} {
		out, label, err := c.Observe(int64(i), classID, i)

		if err != nil {
			t.Fatalf("class %d: unexpected error: %v", classID, err)
		}

		if out != Ignored || label != "" {
			t.Errorf("class %d: expected Ignored, got (%s, %q)", classID, out, label)
		}
	}

	if c.Records() != 0 {
		t.Errorf("expected no track records, got %d", c.Records())
	}

	if snap := c.Snapshot(); snap.Total != 0 {
		t.Errorf("expected total 0, got %d", snap.Total)
	}
}

// TestInvalidInput checks malformed ids are rejected without mutating state
func TestInvalidInput(t *testing.T) {

	c := newTestCounter(t)

	tests := []struct {
		name    string
		trackID int64
		classID int
		frameID int
		wantErr error
	}{
		{"negative track id", -1, 2, 0, ErrInvalidTrackID},
		{"negative class id", 1, -2, 0, ErrInvalidClassID},
		{"negative frame id", 1, 2, -1, ErrInvalidFrameID},
	}

	for _, tc := range tests {
		_, _, err := c.Observe(tc.trackID, tc.classID, tc.frameID)

		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}

	if snap := c.Snapshot(); snap.Total != 0 {
		t.Errorf("expected total 0 after rejected input, got %d", snap.Total)
	}

	// a rejected id must not have been recorded as a distinct object
	if out, _, err := c.Observe(1, 2, 0); err != nil || out != NewlyCounted {
		t.Errorf("expected id 1 still uncounted, got (%s, %v)", out, err)
	}
}

// TestOrderInvariance shuffles an observation sequence and checks the final
// snapshot depends only on each track id's first recognized label
func TestOrderInvariance(t *testing.T) {

	// one entry per track id so any permutation preserves the first
	// recognized label
	obs := []observation{
		{1, 2, 0, 0, ""}, {2, 2, 0, 0, ""}, {3, 3, 1, 0, ""},
		{4, 5, 1, 0, ""}, {5, 7, 2, 0, ""}, {6, 9, 2, 0, ""},
		{7, 2, 3, 0, ""}, {8, 1, 3, 0, ""},
	}

	c := newTestCounter(t)

	for _, o := range obs {
		c.Observe(o.trackID, o.classID, o.frameID)
	}

	want := c.Snapshot()

	rnd := rand.New(rand.NewSource(7))

	for run := 0; run < 10; run++ {

		shuffled := make([]observation, len(obs))
		copy(shuffled, obs)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		c2 := newTestCounter(t)

		for _, o := range shuffled {
			c2.Observe(o.trackID, o.classID, o.frameID)
		}

		got := c2.Snapshot()

		if got.Total != want.Total {
			t.Fatalf("run %d: expected total %d, got %d", run, want.Total, got.Total)
		}

		for label, n := range want.Counts {
			if got.Counts[label] != n {
				t.Errorf("run %d: label %s: expected %d, got %d",
					run, label, n, got.Counts[label])
			}
		}
	}
}

// TestMonotonicity checks per label counts and the total never decrease
// over a random observation stream
func TestMonotonicity(t *testing.T) {

	c := newTestCounter(t)
	rnd := rand.New(rand.NewSource(3))

	prev := c.Snapshot()

	for frame := 0; frame < 500; frame++ {
		c.Observe(int64(rnd.Intn(50)), rnd.Intn(12), frame)

		snap := c.Snapshot()

		if snap.Total < prev.Total {
			t.Fatalf("frame %d: total decreased from %d to %d",
				frame, prev.Total, snap.Total)
		}

		sum := 0

		for label, n := range snap.Counts {
			if n < prev.Counts[label] {
				t.Fatalf("frame %d: label %s decreased from %d to %d",
					frame, label, prev.Counts[label], n)
			}
			sum += n
		}

		if sum != snap.Total {
			t.Fatalf("frame %d: label counts sum to %d but total is %d",
				frame, sum, snap.Total)
		}

		prev = snap
	}
}

// TestSnapshotDetached checks a snapshot is a copy, not a live view
func TestSnapshotDetached(t *testing.T) {

	c := newTestCounter(t)
	c.Observe(1, 2, 0)

	snap := c.Snapshot()
	snap.Counts["car"] = 99

	if got := c.Snapshot(); got.Counts["car"] != 1 {
		t.Errorf("mutating a snapshot changed counter state: car=%d", got.Counts["car"])
	}
}

// TestRecord checks the TrackRecord exposes the first and last sighting
func TestRecord(t *testing.T) {

	c := newTestCounter(t)

	c.Observe(9, 5, 4)
	c.Observe(9, 5, 7)

	rec, ok := c.Record(9)

	if !ok {
		t.Fatal("expected record for track id 9")
	}

	if rec.Label != "bus" || rec.FirstSeen != 4 || rec.LastSeen != 7 {
		t.Errorf("expected (bus, 4, 7), got (%s, %d, %d)",
			rec.Label, rec.FirstSeen, rec.LastSeen)
	}

	if _, ok := c.Record(10); ok {
		t.Error("expected no record for unseen track id 10")
	}
}

// TestEvict checks eviction bounds memory without touching counts, and that
// a reappearing evicted id is counted as a new object
func TestEvict(t *testing.T) {

	c := newTestCounter(t)

	c.Observe(1, 2, 0)
	c.Observe(2, 5, 10)

	if evicted := c.Evict(5); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}

	if c.Records() != 1 {
		t.Errorf("expected 1 record after eviction, got %d", c.Records())
	}

	// counts are history, eviction must not roll them back
	snap := c.Snapshot()

	if snap.Counts["car"] != 1 || snap.Total != 2 {
		t.Errorf("eviction changed counts: %v total=%d", snap.Counts, snap.Total)
	}

	// the evicted id is unknown again and counts a second time by design
	out, _, _ := c.Observe(1, 2, 20)

	if out != NewlyCounted {
		t.Errorf("expected evicted id recounted as NewlyCounted, got %s", out)
	}

	if snap := c.Snapshot(); snap.Counts["car"] != 2 || snap.Total != 3 {
		t.Errorf("expected car=2 total=3, got %v total=%d", snap.Counts, snap.Total)
	}
}

// TestReset checks reset clears records and zeroes all counters
func TestReset(t *testing.T) {

	c := newTestCounter(t)

	c.Observe(1, 2, 0)
	c.Observe(2, 3, 0)
	c.Reset()

	snap := c.Snapshot()

	if snap.Total != 0 {
		t.Errorf("expected total 0 after reset, got %d", snap.Total)
	}

	for label, n := range snap.Counts {
		if n != 0 {
			t.Errorf("expected %s=0 after reset, got %d", label, n)
		}
	}

	// previously counted ids count again in the new session
	if out, _, _ := c.Observe(1, 2, 0); out != NewlyCounted {
		t.Errorf("expected NewlyCounted after reset, got %s", out)
	}
}

// TestNewCounterNilClassMap checks construction fails without a class map
func TestNewCounterNilClassMap(t *testing.T) {

	if _, err := NewCounter(nil); !errors.Is(err, ErrNoClassMap) {
		t.Errorf("expected ErrNoClassMap, got %v", err)
	}
}

// TestConcurrentObserve hammers the counter from multiple goroutines and
// checks each distinct id was counted exactly once
func TestConcurrentObserve(t *testing.T) {

	c := newTestCounter(t)

	const workers = 8
	const ids = 100

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for id := 0; id < ids; id++ {
				if _, _, err := c.Observe(int64(id), 2, id); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	snap := c.Snapshot()

	if snap.Counts["car"] != ids || snap.Total != ids {
		t.Errorf("expected car=%d total=%d, got %v total=%d",
			ids, ids, snap.Counts, snap.Total)
	}
}
