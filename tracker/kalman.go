package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// number of measured dimensions (center x, center y, aspect, height)
	ndim = 4
	// state dimensions, measured values plus their velocities
	sdim = 8
)

// KalmanFilter tracks a bounding box with a constant velocity motion model
// over the measurement space (center x, center y, aspect ratio, height).
// Each Track owns one filter holding that object's state estimate.
type KalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	// motionMat is the state transition matrix F
	motionMat *mat.Dense
	// updateMat is the observation matrix H
	updateMat *mat.Dense
	// mean is the state estimate x
	mean *mat.VecDense
	// covariance is the state covariance P
	covariance *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter seeded with
// the first measurement of the object
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float32,
	measurement Xyah) *KalmanFilter {

	dt := 1.0

	motion := mat.NewDense(sdim, sdim, nil)

	for i := 0; i < sdim; i++ {
		motion.Set(i, i, 1)
	}

	for i := 0; i < ndim; i++ {
		motion.Set(i, i+ndim, dt)
	}

	update := mat.NewDense(ndim, sdim, nil)

	for i := 0; i < ndim; i++ {
		update.Set(i, i, 1)
	}

	kf := &KalmanFilter{
		stdWeightPosition: float64(stdWeightPosition),
		stdWeightVelocity: float64(stdWeightVelocity),
		motionMat:         motion,
		updateMat:         update,
	}

	kf.initState(measurement)

	return kf
}

// initState seeds the state estimate from the first measurement with zero
// velocity and an uncertainty scaled by the object height
func (kf *KalmanFilter) initState(measurement Xyah) {

	mean := mat.NewVecDense(sdim, nil)

	for i := 0; i < ndim; i++ {
		mean.SetVec(i, float64(measurement[i]))
	}

	h := float64(measurement[3])

	std := []float64{
		2 * kf.stdWeightPosition * h,
		2 * kf.stdWeightPosition * h,
		1e-2,
		2 * kf.stdWeightPosition * h,
		10 * kf.stdWeightVelocity * h,
		10 * kf.stdWeightVelocity * h,
		1e-5,
		10 * kf.stdWeightVelocity * h,
	}

	cov := mat.NewDense(sdim, sdim, nil)

	for i, s := range std {
		cov.Set(i, i, s*s)
	}

	kf.mean = mean
	kf.covariance = cov
}

// Predict projects the state estimate ahead one frame using the constant
// velocity model
func (kf *KalmanFilter) Predict() {

	h := kf.mean.AtVec(3)

	// process noise scaled by object height
	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-2,
		kf.stdWeightPosition * h,
		kf.stdWeightVelocity * h,
		kf.stdWeightVelocity * h,
		1e-5,
		kf.stdWeightVelocity * h,
	}

	// x = F x
	var mean mat.VecDense
	mean.MulVec(kf.motionMat, kf.mean)

	// P = F P Ft + Q
	var fp, cov mat.Dense
	fp.Mul(kf.motionMat, kf.covariance)
	cov.Mul(&fp, kf.motionMat.T())

	for i, s := range std {
		cov.Set(i, i, cov.At(i, i)+s*s)
	}

	kf.mean = &mean
	kf.covariance = &cov
}

// Update corrects the state estimate with a new measurement
func (kf *KalmanFilter) Update(measurement Xyah) error {

	h := kf.mean.AtVec(3)

	// measurement noise scaled by object height
	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-1,
		kf.stdWeightPosition * h,
	}

	// S = H P Ht + R
	var hp, s mat.Dense
	hp.Mul(kf.updateMat, kf.covariance)
	s.Mul(&hp, kf.updateMat.T())

	for i, sd := range std {
		s.Set(i, i, s.At(i, i)+sd*sd)
	}

	var sInv mat.Dense

	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("error inverting innovation covariance: %w", err)
	}

	// K = P Ht Sinv
	var pht, gain mat.Dense
	pht.Mul(kf.covariance, kf.updateMat.T())
	gain.Mul(&pht, &sInv)

	// innovation = z - H x
	var hx mat.VecDense
	hx.MulVec(kf.updateMat, kf.mean)

	innovation := mat.NewVecDense(ndim, nil)

	for i := 0; i < ndim; i++ {
		innovation.SetVec(i, float64(measurement[i])-hx.AtVec(i))
	}

	// x = x + K innovation
	var corr, mean mat.VecDense
	corr.MulVec(&gain, innovation)
	mean.AddVec(kf.mean, &corr)

	// P = (I - K H) P
	kh := mat.NewDense(sdim, sdim, nil)
	kh.Mul(&gain, kf.updateMat)

	for i := 0; i < sdim; i++ {
		kh.Set(i, i, kh.At(i, i)-1)
	}

	kh.Scale(-1, kh)

	var cov mat.Dense
	cov.Mul(kh, kf.covariance)

	kf.mean = &mean
	kf.covariance = &cov

	return nil
}

// Rect returns the bounding box of the current state estimate
func (kf *KalmanFilter) Rect() Rect {
	return RectFromXyah(Xyah{
		float32(kf.mean.AtVec(0)),
		float32(kf.mean.AtVec(1)),
		float32(kf.mean.AtVec(2)),
		float32(kf.mean.AtVec(3)),
	})
}
