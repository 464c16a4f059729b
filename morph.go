package conelab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Easing identifies one of the supported progress curves.
type Easing int

const (
	EaseLinear Easing = iota
	EaseCubicOut
	EaseQuartOut
	EaseCubicInOut
)

// Ease maps a raw progress value through the named curve. Input is clamped
// to [0,1] first, so out-of-range progress can never produce an overshoot.
func Ease(e Easing, p float32) float32 {
	p = clamp01(p)
	switch e {
	case EaseCubicOut:
		inv := 1 - p
		return 1 - inv*inv*inv
	case EaseQuartOut:
		inv := 1 - p
		return 1 - inv*inv*inv*inv
	case EaseCubicInOut:
		if p < 0.5 {
			return 4 * p * p * p
		}
		inv := -2*p + 2
		return 1 - inv*inv*inv/2
	default:
		return p
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(start, end, e float32) float32 {
	return start + (end-start)*e
}

func lerpVec3(start, end mgl32.Vec3, e float32) mgl32.Vec3 {
	return mgl32.Vec3{
		lerp(start[0], end[0], e),
		lerp(start[1], end[1], e),
		lerp(start[2], end[2], e),
	}
}

// ShapeParams is one geometric endpoint of a morph: the lathe profile of a
// body plus its placement.
type ShapeParams struct {
	InnerRadius    float32
	OuterRadius    float32
	Height         float32
	PositionOffset mgl32.Vec3
	RotationOffset mgl32.Vec3 // Euler angles, radians
	Scale          float32
}

// MorphProfile interpolates between two shape endpoints under a named easing.
type MorphProfile struct {
	Start  ShapeParams
	End    ShapeParams
	Easing Easing
}

// At returns the interpolated shape for a progress value in [0,1].
func (m MorphProfile) At(progress float32) ShapeParams {
	e := Ease(m.Easing, progress)
	return ShapeParams{
		InnerRadius:    lerp(m.Start.InnerRadius, m.End.InnerRadius, e),
		OuterRadius:    lerp(m.Start.OuterRadius, m.End.OuterRadius, e),
		Height:         lerp(m.Start.Height, m.End.Height, e),
		PositionOffset: lerpVec3(m.Start.PositionOffset, m.End.PositionOffset, e),
		RotationOffset: lerpVec3(m.Start.RotationOffset, m.End.RotationOffset, e),
		Scale:          lerp(m.Start.Scale, m.End.Scale, e),
	}
}

// PhaseWindow re-normalizes a sub-range of a master progress value to its own
// [0,1] window, so several visually sequential effects can share a single
// monotonic driver without separate timers.
type PhaseWindow struct {
	Start float32
	Scale float32
}

func (w PhaseWindow) Progress(master float32) float32 {
	return clamp01((master - w.Start) * w.Scale)
}

// Transition rates observed to read well at different wizard moments, in
// progress units per second.
const (
	TransitionRateDrift = 0.35
	TransitionRateSlow  = 0.8
	TransitionRateBrisk = 2.5
	TransitionRateSnap  = 6.0
)

// TransitionState is the lifecycle of one animated transition.
type TransitionState int

const (
	TransitionIdle TransitionState = iota
	TransitionActive
	TransitionComplete
)

// TransitionSession drives one animated transition between two visual
// states. Progress is strictly monotonic while active and clamps to 1; the
// completion callback fires exactly once per Begin, enforced by the
// Active -> Complete state transition rather than an ad-hoc flag.
type TransitionSession struct {
	state      TransitionState
	progress   float32
	rate       float32
	onComplete func()
}

func NewTransitionSession(rate float32, onComplete func()) *TransitionSession {
	if rate <= 0 {
		rate = TransitionRateSlow
	}
	return &TransitionSession{
		rate:       rate,
		onComplete: onComplete,
	}
}

// Begin starts a transition from Idle. A Begin while a transition is active
// or complete is ignored: progress never rewinds and completion can never
// double-fire. Returns whether the session actually started.
func (s *TransitionSession) Begin() bool {
	if s.state != TransitionIdle {
		return false
	}
	s.state = TransitionActive
	s.progress = 0
	return true
}

// Advance moves progress by dt*rate and returns the new progress. Only an
// active session advances. An abnormally large dt (a backgrounded tab, a
// debugger pause) clamps to 1.0 on a single tick; the instant progress
// reaches 1 the session becomes Complete and the callback fires.
func (s *TransitionSession) Advance(dt float32) float32 {
	if s.state != TransitionActive || dt <= 0 {
		return s.progress
	}

	s.progress += dt * s.rate
	if s.progress >= 1 {
		s.progress = 1
		s.state = TransitionComplete
		if s.onComplete != nil {
			s.onComplete()
		}
	}
	return s.progress
}

func (s *TransitionSession) Progress() float32 {
	return s.progress
}

func (s *TransitionSession) State() TransitionState {
	return s.state
}

func (s *TransitionSession) Active() bool {
	return s.state == TransitionActive
}

// Reset abandons the session and returns it to Idle defaults. A callback
// that has not fired yet never will: the session must go through a fresh
// Begin/Advance cycle to complete.
func (s *TransitionSession) Reset() {
	s.state = TransitionIdle
	s.progress = 0
}

// SetRate tunes the perceived speed of the next Advance calls. Ignored for
// non-positive rates.
func (s *TransitionSession) SetRate(rate float32) {
	if rate > 0 {
		s.rate = rate
	}
}
