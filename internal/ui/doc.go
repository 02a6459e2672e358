// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for mood arc generation:
//  1. [SessionCheckView] : Probe the backend session before showing anything
//  2. [LoginView] : Point the user at the web login page when no session exists
//  3. [FormView] : Collect current mood, goal mood, and stage/track counts
//  4. [SubmittingView] : Monitor real-time progress updates
//  5. [ResultView] : Display the playlist, fallback track links, and the safety note
//  6. [HistoryView] : Browse locally recorded generations
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the flow controller, providing
// non-blocking status reporting during submission.
//
// Keyboard handling is view aware: while the form is focused, plain letters
// belong to the text inputs, so only ctrl+c and esc quit there. Contextual
// help is displayed via charmbracelet/bubbles/help.
package ui
