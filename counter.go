package vehiclecount

import (
	"errors"
	"sync"
)

var (
	// ErrInvalidTrackID is returned when an observation carries a negative
	// track id
	ErrInvalidTrackID = errors.New("invalid track id")
	// ErrInvalidClassID is returned when an observation carries a negative
	// raw class id
	ErrInvalidClassID = errors.New("invalid class id")
	// ErrInvalidFrameID is returned when an observation carries a negative
	// frame number
	ErrInvalidFrameID = errors.New("invalid frame id")
	// ErrNoClassMap is returned when a Counter is created without a class map
	ErrNoClassMap = errors.New("class map is nil")
)

// ObserveOutcome is the result of presenting a single observation to the
// Counter
type ObserveOutcome int

const (
	// Ignored means the observation's class id is not of interest and
	// contributed nothing to the tally
	Ignored ObserveOutcome = 0
	// AlreadyCounted means the track id has been counted on an earlier
	// observation and the tally is unchanged
	AlreadyCounted ObserveOutcome = 1
	// NewlyCounted means the track id was seen for the first time and its
	// label's count was incremented
	NewlyCounted ObserveOutcome = 2
)

// String returns the outcome name
func (o ObserveOutcome) String() string {
	switch o {
	case AlreadyCounted:
		return "AlreadyCounted"
	case NewlyCounted:
		return "NewlyCounted"
	}
	return "Ignored"
}

// TrackRecord records the permanent label assignment made for a track id on
// its first recognized sighting
type TrackRecord struct {
	// TrackID is the tracker assigned object id
	TrackID int64
	// Label the track id was classified as when first counted.  The first
	// classification wins, a different label reported by a later frame for
	// the same id never revises it
	Label string
	// FirstSeen is the frame number of the first recognized sighting
	FirstSeen int
	// LastSeen is the frame number of the most recent sighting
	LastSeen int
}

// Counter accumulates a deduplicated count of distinct objects per label
// from a stream of (track id, class id) observations.  A track id is counted
// exactly once no matter how many frames it appears in.  Counter is safe for
// use from multiple goroutines.
type Counter struct {
	// classes filters raw class ids down to the labels of interest
	classes *ClassMap
	// records holds one TrackRecord per counted track id
	records map[int64]*TrackRecord
	// counts per label, seeded with a zero entry for every label in the
	// class map
	counts map[string]int
	// total number of objects counted
	total int
	sync.Mutex
}

// NewCounter returns a Counter that counts objects whose class is in the
// given class map
func NewCounter(classes *ClassMap) (*Counter, error) {

	if classes == nil {
		return nil, ErrNoClassMap
	}

	c := &Counter{
		classes: classes,
	}
	c.init()

	return c, nil
}

// init allocates fresh record and count state
func (c *Counter) init() {
	c.records = make(map[int64]*TrackRecord)
	c.counts = make(map[string]int, len(c.classes.Labels()))
	c.total = 0

	for _, label := range c.classes.Labels() {
		c.counts[label] = 0
	}
}

// Observe presents a single detection to the counter.  The track id is the
// stable object id assigned by the upstream tracker, classID the raw model
// class id, and frameID the video frame the detection came from.  On a first
// recognized sighting the track id's label count is incremented and the
// assigned label returned.  Repeat sightings return AlreadyCounted along with
// the recorded label and leave the tally unchanged, regardless of the class
// reported.  Unrecognized class ids return Ignored.  Negative inputs are
// rejected with an error and cause no state change.
func (c *Counter) Observe(trackID int64, classID, frameID int) (ObserveOutcome, string, error) {

	if trackID < 0 {
		return Ignored, "", ErrInvalidTrackID
	}

	if classID < 0 {
		return Ignored, "", ErrInvalidClassID
	}

	if frameID < 0 {
		return Ignored, "", ErrInvalidFrameID
	}

	// classify before anything else, a class id outside the map is filtered
	// out even when the track id is already recorded
	label, ok := c.classes.Classify(classID)

	if !ok {
		return Ignored, "", nil
	}

	c.Lock()
	defer c.Unlock()

	if rec, exists := c.records[trackID]; exists {
		rec.LastSeen = frameID
		return AlreadyCounted, rec.Label, nil
	}

	c.records[trackID] = &TrackRecord{
		TrackID:   trackID,
		Label:     label,
		FirstSeen: frameID,
		LastSeen:  frameID,
	}

	c.counts[label]++
	c.total++

	return NewlyCounted, label, nil
}

// Snapshot returns a point in time copy of the per label counts and total.
// The returned value is detached from the counter, it stays consistent while
// observation continues and is safe to render or report from another
// goroutine.
func (c *Counter) Snapshot() CountSnapshot {
	c.Lock()
	defer c.Unlock()

	counts := make(map[string]int, len(c.counts))
	for label, n := range c.counts {
		counts[label] = n
	}

	return CountSnapshot{
		Counts: counts,
		Total:  c.total,
	}
}

// Record returns the TrackRecord for the given track id if it has been
// counted
func (c *Counter) Record(trackID int64) (TrackRecord, bool) {
	c.Lock()
	defer c.Unlock()

	if rec, exists := c.records[trackID]; exists {
		return *rec, true
	}

	return TrackRecord{}, false
}

// Records returns the number of TrackRecords held in memory
func (c *Counter) Records() int {
	c.Lock()
	defer c.Unlock()
	return len(c.records)
}

// Evict drops TrackRecords whose last sighting was before the given frame
// number and returns the number dropped.  Eviction bounds memory on a long
// running stream, it never changes historical counts.  A track id that
// reappears after its record was evicted is counted as a new object.
func (c *Counter) Evict(beforeFrame int) int {
	c.Lock()
	defer c.Unlock()

	evicted := 0

	for trackID, rec := range c.records {
		if rec.LastSeen < beforeFrame {
			delete(c.records, trackID)
			evicted++
		}
	}

	return evicted
}

// Reset clears all TrackRecords and zeroes every counter.  It marks an
// explicit session boundary such as restarting a video source.
func (c *Counter) Reset() {
	c.Lock()
	defer c.Unlock()
	c.init()
}
