// Package features derives the per-hand geometric features the block
// classifier thresholds against.
//
// All features are measured in the head frame: how far the hand's forward
// axis points along the head's down, forward, or outward axis, and how far
// the hand sits above or below the head. The package is a pure numeric
// transform apart from SpeedWindow, which carries a short speed history.
package features
