// Package block runs the per-frame blocking classifier.
//
// A Session owns all state that persists between frames: the per-controller
// speed windows, the blocking-flag mode filter, the start and stop cooldowns
// and the validity flag. Update is called once per tracking update with a
// Host that answers pose, equipment and animation queries, and a Sink that
// receives the resulting block start and stop events.
//
// Frame order:
//
//  1. Clear the validity flag and tick both cooldowns.
//  2. Skip when the actor is not ready.
//  3. Resolve the loadout. Leaving a valid loadout fires a forced stop that
//     ignores the stop cooldown.
//  4. Skip when any tracked device is invalid.
//  5. Extract features for both hands. A degenerate axis skips the frame.
//  6. Commit speeds and the raw blocking flag.
//  7. Classify each hand by its rule.
//  8. Combine the hands and gate by cooldown.
//  9. Mark the frame valid.
//
// Skipped frames change nothing except the cooldown ticks and the cleared
// validity flag. Update never returns an error and never panics on bad host
// data; sessions are not safe for concurrent use.
package block
