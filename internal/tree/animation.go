package tree

import "time"

// Easing maps a linear progress fraction in [0,1] to an eased fraction.
type Easing func(t float64) float64

// EaseOutCubic decelerates into the target value, the default easing for
// split/close transitions.
func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

// Linear performs no easing.
func Linear(t float64) float64 { return t }

// AnimationPreset bundles a duration and an easing curve.
type AnimationPreset struct {
	Duration time.Duration
	Easing   Easing
}

// FastPreset is used for pane split/close area transitions.
var FastPreset = AnimationPreset{Duration: 120 * time.Millisecond, Easing: EaseOutCubic}

// scalarAnimation eases a single float64 from its start value to a target
// over a fixed duration.
type scalarAnimation struct {
	from, to float64
	elapsed  time.Duration
	preset   AnimationPreset
}

func newScalarAnimation(from, to float64, preset AnimationPreset) scalarAnimation {
	return scalarAnimation{from: from, to: to, preset: preset}
}

// update advances the animation by dt and reports whether it has finished.
func (a *scalarAnimation) update(dt time.Duration) bool {
	if a.done() {
		return true
	}
	a.elapsed += dt
	return a.done()
}

func (a *scalarAnimation) done() bool {
	return a.preset.Duration <= 0 || a.elapsed >= a.preset.Duration
}

func (a *scalarAnimation) value() float64 {
	if a.done() {
		return a.to
	}
	t := float64(a.elapsed) / float64(a.preset.Duration)
	eased := a.preset.Easing(t)
	return a.from + (a.to-a.from)*eased
}

// AreaAnimation eases a view's rect from an old area to a new one so a
// split or close doesn't snap straight to the final layout.
type AreaAnimation struct {
	x, y, w, h scalarAnimation
}

// NewAreaAnimation builds an animation easing from `from` to `to` using
// preset.
func NewAreaAnimation(from, to Rect, preset AnimationPreset) AreaAnimation {
	return AreaAnimation{
		x: newScalarAnimation(float64(from.X), float64(to.X), preset),
		y: newScalarAnimation(float64(from.Y), float64(to.Y), preset),
		w: newScalarAnimation(float64(from.Width), float64(to.Width), preset),
		h: newScalarAnimation(float64(from.Height), float64(to.Height), preset),
	}
}

// Update advances all four scalar animations by dt and reports whether
// every one of them has finished.
func (a *AreaAnimation) Update(dt time.Duration) bool {
	doneX := a.x.update(dt)
	doneY := a.y.update(dt)
	doneW := a.w.update(dt)
	doneH := a.h.update(dt)
	return doneX && doneY && doneW && doneH
}

// Current reconstructs the animation's current rect, flooring width and
// height to a minimum of 1 cell.
func (a *AreaAnimation) Current() Rect {
	w := int(a.w.value())
	h := int(a.h.value())
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Rect{
		X:      int(a.x.value()),
		Y:      int(a.y.value()),
		Width:  w,
		Height: h,
	}
}
