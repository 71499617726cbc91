package constitutive

import "math"

// epsSlope is the near-zero slope used in the below-P0 and above-PF linear
// tails of the PDD function and of the leak law.
const epsSlope = 1e-11

// pddDelta is the δ fraction of (PF−P0) defining where the linear tails
// below P0 and above PF begin, per spec.
const pddDelta = 0.1

// pddInnerDelta is the δ fraction used for the *inner* shoulder endpoint —
// where the cubic bridge meets the exact central sqrt law — rather than
// pddDelta itself. The central law's derivative diverges as p approaches
// P0 (or PF), so anchoring the inner endpoint at the same distance as the
// outer (linear-tail) endpoint leaves Φ(P0) at about 12% of Drequired; at
// pddDelta/5 it is about 8%, and Φ(PF) is within 0.3% of Drequired
// (against about 1.2% at pddDelta). pddDelta/5 is the widest inner shoulder that
// still keeps the Hermite bridge provably monotonic: with the outer
// endpoint's slope ≈0, monotonicity only requires the inner endpoint's
// slope not exceed 3× the bridge's secant slope (Fritsch-Carlson), and
// that bound holds with equality at a 5:1 outer:inner ratio regardless of
// Drequired, P0, or PF.
const pddInnerDelta = pddDelta / 5

// centralSqrt evaluates the unshifted central-region law
// Drequired·sqrt((p-P0)/(PF-P0)) and its derivative.
func centralSqrt(p, required, p0, span float64) (float64, float64) {
	frac := (p - p0) / span
	sq := math.Sqrt(frac)
	return required * sq, required / (2 * span * sq)
}

// PDD evaluates the smoothed pressure-driven-demand function
// Φ(p; Drequired, P0, PF) and its derivative with respect to pressure p
// (head above elevation).
//
// The true central law Drequired·sqrt((p-P0)/(PF-P0)) has an unbounded
// derivative exactly at p=P0, so the shoulders that join it to the
// near-zero-slope linear tails span [P0-δΔ, P0+δΔ/5] and
// [PF-δΔ/5, PF+δΔ] respectively (see pddInnerDelta) — asymmetric so that
// the finite-slope endpoint each cubic bridge matches against the central
// law sits close enough to P0/PF that Φ(P0)≈0 and Φ(PF)≈Drequired.
func PDD(p, required, p0, pf float64) (demand, dDemandDp float64) {
	span := pf - p0
	if span <= 0 {
		if p >= p0 {
			return required, 0
		}
		return 0, 0
	}
	shoulder := pddDelta * span
	innerShoulder := pddInnerDelta * span
	lowEdge := p0 - shoulder
	lowInner := p0 + innerShoulder
	highInner := pf - innerShoulder
	highEdge := pf + shoulder

	switch {
	case p <= lowEdge:
		return epsSlope * p, epsSlope
	case p >= highEdge:
		return required + epsSlope*p, epsSlope
	case p < lowInner: // lower shoulder [lowEdge, lowInner]
		v0, m0 := epsSlope*lowEdge, epsSlope
		v1, m1 := centralSqrt(lowInner, required, p0, span)
		bridge := CubicBridge(lowEdge, v0, m0, lowInner, v1, m1)
		return EvalCubic(bridge, p)
	case p > highInner: // upper shoulder [highInner, highEdge]
		v0, m0 := centralSqrt(highInner, required, p0, span)
		v1, m1 := required+epsSlope*highEdge, epsSlope
		bridge := CubicBridge(highInner, v0, m0, highEdge, v1, m1)
		return EvalCubic(bridge, p)
	default: // central region [lowInner, highInner]
		return centralSqrt(p, required, p0, span)
	}
}
