package main

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/marcher/pkg/math3d"
)

// RotationAxis tracks angle and angular velocity for one axis. The velocity
// decays towards zero through a critically damped spring.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring state for Velocity
}

// NewRotationAxis creates an axis stepped fps times per second. An fps
// below 1 is treated as 1.
func NewRotationAxis(fps int) RotationAxis {
	fps = max(fps, 1)
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = no overshoot
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the angle by the velocity and decays the velocity.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState is the spin applied to the scene geometry.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   max(fps, 1),
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Matrix returns the rotation pitch about X, then yaw about Y, then roll
// about Z, applied to the geometry in that order.
func (r *RotationState) Matrix() math3d.Mat3 {
	return math3d.RotateZ(r.Roll.Position).
		Mul(math3d.RotateY(r.Yaw.Position)).
		Mul(math3d.RotateX(r.Pitch.Position)).
		Mat3()
}
