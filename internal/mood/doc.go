// Package mood maps free-text mood descriptions to the discrete mode tags the
// generation endpoint understands.
//
// # Classification
//
// [Classify] lower-cases the combined current-mood and goal-mood text and runs
// an ordered sequence of substring tests, one keyword list per tag:
//
//	sleep > focus > gym > calm > rage_release
//
// The first matching list wins and unmatched text falls back to [TagUplift].
// The ordering is deliberate tie-breaking, not an optimization: "tired and
// stressed" must classify as sleep, so the sleep list runs before calm. Keep
// the sequence stable across changes.
//
// # Usage
//
//	tag := mood.Classify(mood.Combine(currentText, goalText))
//
// [ParseTag] validates explicit --mode flag values against the backend's
// accepted literals, and [Tags] enumerates them for help output.
package mood
