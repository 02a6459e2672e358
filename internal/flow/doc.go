// Package flow runs mood arc submissions as a supervised state machine.
//
// # Submission Lifecycle
//
// [Controller.Submit] walks one attempt through Idle → Validating →
// Submitting and lands on one of three terminal states:
//
//  1. [StateSuccess] : the backend returned a playlist URL
//     - Zero tracks added with no manual links still renders as success
//  2. [StatePartialFailure] : the playlist exists but population failed
//     - The result carries manual track links for adding by hand
//  3. [StateFailure] : no playlist URL came back
//     - The outcome message is the server's note, or a fixed fallback
//
// The controller re-arms to [StateIdle] on every exit, error paths included.
//
// # Gatekeeping
//
// Bad fields ([ValidationError]) and a missing session
// ([shared.ErrLoginRequired]) return before any network call. Concurrent
// submits are rejected with [shared.ErrSubmissionInFlight] while an attempt
// is outstanding, so a double-press never produces two playlists.
//
// # Progress Reporting
//
// Submissions emit [ProgressUpdate] values on a caller-supplied channel.
// Updates use select with default to prevent blocking.
//
// # History
//
// The optional [Recorder] interface persists created playlists
// (repositories.HistoryRepository). Entries are recorded best-effort
// (errors logged) to avoid disrupting submissions.
package flow
