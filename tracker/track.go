package tracker

// TrackState represents the lifecycle state of a tracked object
type TrackState int

const (
	// Object was matched to a detection in the current frame
	Tracked TrackState = 1
	// Object was not matched and is coasting on its motion prediction
	Lost TrackState = 2
	// Object was lost for longer than the tracker's lost frame budget
	Removed TrackState = 3
)

// Track represents a single object followed across frames.  It carries the
// stable track id consumed by the counting core.
type Track struct {
	// Kalman filter holding the motion state estimate
	kalmanFilter *KalmanFilter
	// Bounding box of the tracked object
	rect Rect
	// Current lifecycle state of the track
	state TrackState
	// Detection score of the most recent matched detection
	score float32
	// Unique id for the track
	trackID int64
	// Frame id the track was last matched or predicted on
	frameID int
	// Frame id the track started on
	startFrameID int
	// Unique id of the most recent matched detection
	detectionID int64
	// label is the object class id from the detector
	label int
	// missed counts consecutive frames without a matched detection
	missed int
}

// newTrack creates a Track from a detection first seen on the given frame,
// assigning it the given track id
func newTrack(det Detection, frameID int, trackID int64) *Track {
	return &Track{
		kalmanFilter: NewKalmanFilter(1.0/20, 1.0/160, det.Rect.ToXyah()),
		rect:         det.Rect,
		state:        Tracked,
		score:        det.Score,
		trackID:      trackID,
		frameID:      frameID,
		startFrameID: frameID,
		detectionID:  det.ID,
		label:        det.Label,
	}
}

// predict projects the track's bounding box ahead one frame
func (t *Track) predict() {
	t.kalmanFilter.Predict()
	t.rect = t.kalmanFilter.Rect()
}

// update corrects the track with a matched detection
func (t *Track) update(det Detection, frameID int) error {

	if err := t.kalmanFilter.Update(det.Rect.ToXyah()); err != nil {
		return err
	}

	t.rect = t.kalmanFilter.Rect()
	t.state = Tracked
	t.score = det.Score
	t.detectionID = det.ID
	t.label = det.Label
	t.frameID = frameID
	t.missed = 0

	return nil
}

// markLost flags the track as unmatched in the current frame
func (t *Track) markLost() {
	t.state = Lost
	t.missed++
}

// markRemoved flags the track for removal
func (t *Track) markRemoved() {
	t.state = Removed
}

// GetRect returns the bounding box of the tracked object
func (t *Track) GetRect() *Rect {
	return &t.rect
}

// GetState returns the current lifecycle state of the track
func (t *Track) GetState() TrackState {
	return t.state
}

// GetScore returns the detection score
func (t *Track) GetScore() float32 {
	return t.score
}

// GetTrackID returns the unique id for the track
func (t *Track) GetTrackID() int64 {
	return t.trackID
}

// GetFrameID returns the frame id the track was last updated on
func (t *Track) GetFrameID() int {
	return t.frameID
}

// GetStartFrameID returns the frame id the track started on
func (t *Track) GetStartFrameID() int {
	return t.startFrameID
}

// GetDetectionID returns the id of the most recent matched detection
func (t *Track) GetDetectionID() int64 {
	return t.detectionID
}

// GetLabel returns the object class id from the detector
func (t *Track) GetLabel() int {
	return t.label
}
