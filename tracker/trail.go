package tracker

import "sync"

// Point represents the x,y coordinates of the center of a tracked object's
// bounding box
type Point struct {
	X, Y int
}

// history represents the recorded path of a single track
type history struct {
	points []Point
}

// Trail keeps a bounded history of each track's center points used for
// drawing a trail behind moving objects
type Trail struct {
	// size is the maximum number of most recent points to keep per track
	size int
	// recorded paths per track id
	tracks map[int64]*history
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum
// number of most recent points to keep per track.
func NewTrail(size int) *Trail {
	return &Trail{
		size:   size,
		tracks: make(map[int64]*history),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.tracks = make(map[int64]*history)
}

// Add records the current center point of the given track
func (t *Trail) Add(track *Track) {
	t.Lock()
	defer t.Unlock()

	id := track.GetTrackID()

	if _, exists := t.tracks[id]; !exists {
		t.tracks[id] = &history{}
	}

	path := t.tracks[id]

	path.points = append(path.points, Point{
		X: int(track.GetRect().CenterX()),
		Y: int(track.GetRect().CenterY()),
	})

	// drop oldest point once history is exceeded
	if len(path.points) > t.size {
		path.points = path.points[1:]
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int64) []Point {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.tracks[id]; exists {
		return t.tracks[id].points
	}

	// no history yet
	return nil
}
