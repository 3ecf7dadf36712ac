// Package pose owns the tracked-device side of the block classifier.
//
// Responsibilities: world-space transforms for the head-mounted display and
// both hand controllers, the scalar speed reported for each controller, and
// the mapping from logical hand roles (main/off) to physical controllers.
// Key types: Transform, Sample, HandRole, Controller, Provider.
//
// Dependency rule: pose is a leaf. It knows nothing about equipment,
// thresholds, or animation events.
package pose
