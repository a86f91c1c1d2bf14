/*
Package tracker implements multi-object tracking over per-frame object
detections.  Detections are associated to existing tracks by bounding box
IoU against a Kalman filter motion prediction, giving each physical object
a stable track id across the frames it remains visible.
*/
package tracker

import (
	"sort"
)

// Tracker associates per-frame detections into tracks with stable ids
type Tracker struct {
	// Minimum IoU between a predicted track box and a detection box for
	// the two to be associated
	iouThresh float32
	// Minimum detection score for starting a new track
	minScore float32
	// Maximum number of frames an object can be lost before being removed
	maxTimeLost int
	// Current frame id
	frameID int
	// Counter for assigning unique track ids
	trackIDCount int64
	// Tracked and lost tracks carried between frames
	tracks []*Track
}

// NewTracker initializes and returns a new Tracker.  trackBuffer is the
// number of frames a lost object is retained at 30 FPS and is scaled by
// the given frame rate.
func NewTracker(frameRate int, trackBuffer int, iouThresh float32,
	minScore float32) *Tracker {

	return &Tracker{
		iouThresh:   iouThresh,
		minScore:    minScore,
		maxTimeLost: int(float32(frameRate) / 30.0 * float32(trackBuffer)),
	}
}

// Reset clears the tracked data and resets everything
func (tk *Tracker) Reset() {
	tk.frameID = 0
	tk.trackIDCount = 0
	tk.tracks = make([]*Track, 0)
}

// FrameID returns the number of frames the tracker has processed
func (tk *Tracker) FrameID() int {
	return tk.frameID
}

// match pairs a track index with a detection index and their IoU
type match struct {
	track     int
	detection int
	iou       float32
}

// Update advances the tracker one frame with the given detections and
// returns the tracks matched in this frame
func (tk *Tracker) Update(detections []Detection) ([]*Track, error) {

	tk.frameID++

	// project every carried track ahead to this frame
	for _, track := range tk.tracks {
		track.predict()
	}

	// greedy IoU association, best overlapping pairs first
	var candidates []match

	for ti, track := range tk.tracks {
		for di := range detections {
			iou := track.GetRect().CalcIoU(detections[di].Rect)

			if iou >= tk.iouThresh {
				candidates = append(candidates, match{ti, di, iou})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].iou > candidates[j].iou
	})

	usedTracks := make([]bool, len(tk.tracks))
	usedDetections := make([]bool, len(detections))

	var matched []*Track

	for _, m := range candidates {

		if usedTracks[m.track] || usedDetections[m.detection] {
			continue
		}

		usedTracks[m.track] = true
		usedDetections[m.detection] = true

		track := tk.tracks[m.track]

		if err := track.update(detections[m.detection], tk.frameID); err != nil {
			return nil, err
		}

		matched = append(matched, track)
	}

	// unmatched tracks coast as lost until the lost frame budget runs out
	remaining := make([]*Track, 0, len(tk.tracks)+len(detections))

	for ti, track := range tk.tracks {

		if usedTracks[ti] {
			remaining = append(remaining, track)
			continue
		}

		track.markLost()

		if track.missed > tk.maxTimeLost {
			track.markRemoved()
			continue
		}

		remaining = append(remaining, track)
	}

	// unmatched detections above the score floor start new tracks
	for di := range detections {

		if usedDetections[di] || detections[di].Score < tk.minScore {
			continue
		}

		tk.trackIDCount++
		track := newTrack(detections[di], tk.frameID, tk.trackIDCount)

		remaining = append(remaining, track)
		matched = append(matched, track)
	}

	tk.tracks = remaining

	return matched, nil
}
