package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/flow"
	"github.com/desertthunder/moodarc/internal/repositories"
	"github.com/desertthunder/moodarc/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SessionCheckView ViewState = iota
	LoginView
	FormView
	SubmittingView
	ResultView
	HistoryView
)

// Form field indices, in focus order.
const (
	fieldMood = iota
	fieldGoal
	fieldStages
	fieldTracks
	fieldCount
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	auth         *auth.Authenticator
	controller   *flow.Controller
	history      *repositories.HistoryRepository
	loginURL     string
	width        int
	height       int
	inputs       []textinput.Model
	focused      int
	fieldErrs    map[string]string
	banner       string
	progressChan chan flow.ProgressUpdate
	progress     flow.ProgressUpdate
	outcome      *flow.Outcome
	submitErr    error
	probe        auth.Probe
	historyList  list.Model
	historyErr   error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies. The
// history repository may be nil when local recording is disabled.
func NewModel(ctx context.Context, authenticator *auth.Authenticator, controller *flow.Controller, history *repositories.HistoryRepository, loginURL string) *Model {
	return &Model{
		ctx:        ctx,
		view:       SessionCheckView,
		auth:       authenticator,
		controller: controller,
		history:    history,
		loginURL:   loginURL,
		inputs:     newFormInputs(),
		fieldErrs:  map[string]string{},
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)

	mood := textinput.New()
	mood.Placeholder = "how do you feel right now?"
	mood.CharLimit = 280
	mood.Width = 48
	mood.Focus()
	inputs[fieldMood] = mood

	goal := textinput.New()
	goal.Placeholder = "how do you want to feel?"
	goal.CharLimit = 280
	goal.Width = 48
	inputs[fieldGoal] = goal

	stages := textinput.New()
	stages.Placeholder = "5"
	stages.CharLimit = 2
	stages.Width = 4
	inputs[fieldStages] = stages

	tracks := textinput.New()
	tracks.Placeholder = "30"
	tracks.CharLimit = 2
	tracks.Width = 4
	inputs[fieldTracks] = tracks

	return inputs
}

// Init kicks off a backend session probe before showing the form.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.checkSession(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.historyList.Width() == 0 {
			m.historyList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SessionCheckView, SubmittingView:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		case LoginView:
			return m.handleLoginKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}

	case sessionCheckedMsg:
		m.probe = msg.probe
		if msg.probe.Status == auth.ProbeAuthenticated {
			m.view = FormView
			return m, m.focusField(fieldMood)
		}
		m.view = LoginView
		return m, nil

	case progressMsg:
		m.progress = flow.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case submitDoneMsg:
		return m.finishSubmission(msg)

	case historyFetchedMsg:
		if msg.err != nil {
			m.historyErr = msg.err
			m.view = HistoryView
			return m, nil
		}
		m.historyErr = nil
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = historyItem{entry: entry}
		}
		m.historyList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.historyList.Title = "Recent Mood Arcs"
		m.historyList.SetSize(m.width-4, m.height-8)
		m.view = HistoryView
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SessionCheckView:
		return m.renderSessionCheck()
	case LoginView:
		return m.renderLogin()
	case FormView:
		return m.renderForm()
	case SubmittingView:
		return m.renderSubmitting()
	case ResultView:
		return m.renderResult()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		m.view = SessionCheckView
		return m, m.checkSession()
	case "o":
		return m, m.openInBrowser(m.loginURL)
	}
	return m, nil
}

// handleFormKeys routes keys while text inputs have focus. Plain letters
// belong to the focused input, so only ctrl+c and esc quit here.
func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.focusField((m.focused + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focused + fieldCount - 1) % fieldCount)
	case "enter":
		return m.startSubmission()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.resetForm()
	case "h":
		return m, m.fetchHistory()
	case "o":
		if m.outcome != nil && m.outcome.Result.Created() {
			return m, m.openInBrowser(m.outcome.Result.URL)
		}
	}
	return m, nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.outcome != nil && !m.outcome.FormVisible() {
			m.view = ResultView
			return m, nil
		}
		m.view = FormView
		return m, m.focusField(m.focused)
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

// startSubmission validates the numeric fields locally, then hands the rest
// to the controller on a goroutine so progress updates stream back through
// progressChan.
func (m *Model) startSubmission() (tea.Model, tea.Cmd) {
	m.banner = ""
	m.fieldErrs = map[string]string{}

	stages, ok := parseCount(m.inputs[fieldStages].Value())
	if !ok {
		m.fieldErrs["stages"] = "Stages must be a number."
		return m, m.focusField(fieldStages)
	}
	tracks, ok := parseCount(m.inputs[fieldTracks].Value())
	if !ok {
		m.fieldErrs["tracks"] = "Tracks must be a number."
		return m, m.focusField(fieldTracks)
	}

	input := flow.Input{
		CurrentMood: m.inputs[fieldMood].Value(),
		GoalMood:    m.inputs[fieldGoal].Value(),
		Stages:      stages,
		Tracks:      tracks,
	}

	m.view = SubmittingView
	m.progress = flow.ProgressUpdate{}
	m.progressChan = make(chan flow.ProgressUpdate, 50)

	go func() {
		outcome, err := m.controller.Submit(m.ctx, input, m.progressChan)
		m.outcome = outcome
		m.submitErr = err
		close(m.progressChan)
	}()

	return m, m.waitForProgress()
}

// parseCount parses an optional numeric field. Empty means "use the
// default" and parses as zero.
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return submitDoneMsg{outcome: m.outcome, err: m.submitErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			return submitDoneMsg{outcome: m.outcome, err: m.submitErr}
		}
		return progressMsg(update)
	}
}

// finishSubmission maps the controller's result onto a view: validation
// problems return to the form with the offending field focused, a missing
// session returns to the login view, and everything else lands on the
// result or the form depending on the outcome.
func (m *Model) finishSubmission(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.progressChan = nil

	if msg.err != nil {
		var verr *flow.ValidationError
		switch {
		case errors.As(msg.err, &verr):
			m.view = FormView
			m.fieldErrs[verr.Field] = verr.Message
			return m, m.focusField(fieldForName(verr.Field))
		case errors.Is(msg.err, shared.ErrLoginRequired):
			m.view = LoginView
			return m, nil
		case errors.Is(msg.err, shared.ErrSubmissionInFlight):
			return m, nil
		default:
			m.view = FormView
			m.banner = msg.err.Error()
			return m, m.focusField(m.focused)
		}
	}

	m.outcome = msg.outcome
	if msg.outcome != nil && msg.outcome.FormVisible() {
		m.view = FormView
		m.banner = msg.outcome.Message
		return m, m.focusField(m.focused)
	}
	m.view = ResultView
	return m, nil
}

func fieldForName(name string) int {
	switch name {
	case "goal":
		return fieldGoal
	case "stages":
		return fieldStages
	case "tracks":
		return fieldTracks
	default:
		return fieldMood
	}
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FormView:
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	case HistoryView:
		m.historyList, cmd = m.historyList.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(idx int) tea.Cmd {
	m.focused = idx
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[idx].Focus()
}

func (m *Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg{probe: m.auth.CheckBackendSession(m.ctx)}
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		if m.history == nil {
			return historyFetchedMsg{}
		}
		entries, err := m.history.List(m.ctx, 20)
		return historyFetchedMsg{entries: entries, err: err}
	}
}

// openInBrowser is best effort. A browser that refuses to open is not worth
// interrupting the session over.
func (m *Model) openInBrowser(url string) tea.Cmd {
	return func() tea.Msg {
		_ = shared.OpenBrowser(url)
		return nil
	}
}

func (m *Model) resetForm() tea.Cmd {
	m.outcome = nil
	m.submitErr = nil
	m.banner = ""
	m.fieldErrs = map[string]string{}
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.view = FormView
	return m.focusField(fieldMood)
}

func (m *Model) renderSessionCheck() string {
	return styles.help.Render("Checking your session...")
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Sign In Required")

	var note string
	if m.probe.Status == auth.ProbeFailed && m.probe.Err != nil {
		note = styles.warn.Render(fmt.Sprintf("Session check failed: %v", m.probe.Err)) + "\n\n"
	}

	body := fmt.Sprintf("Sign in at %s and come back.", m.loginURL)

	openKey := key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open login page"))
	retryKey := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "check again"))
	helpView := m.help.ShortHelpView([]key.Binding{openKey, retryKey, m.keys.quit})

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, note, body, helpView)
}

func (m *Model) renderForm() string {
	title := styles.title.Render("Create A Mood Arc")

	var banner string
	if m.banner != "" {
		banner = styles.err.Render(m.banner) + "\n\n"
	}

	labels := []string{"Current mood", "Goal mood", "Stages (2-10)", "Tracks (10-60)"}
	fields := []string{"mood", "goal", "stages", "tracks"}

	var b strings.Builder
	for i, input := range m.inputs {
		b.WriteString(fmt.Sprintf("%s\n%s\n", labels[i], input.View()))
		if msg, ok := m.fieldErrs[fields[i]]; ok {
			b.WriteString(styles.err.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}

	quitKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, quitKey})

	return fmt.Sprintf("%s\n%s%s%s", title, banner, b.String(), helpView)
}

func (m *Model) renderSubmitting() string {
	title := styles.title.Render("Generating Playlist")
	message := m.progress.Message
	if message == "" {
		message = "Submitting mood arc..."
	}
	return fmt.Sprintf("%s\n%s", title, message)
}

func (m *Model) renderResult() string {
	if m.outcome == nil || m.outcome.Result == nil {
		return styles.err.Render("No result available") + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit})
	}

	result := m.outcome.Result

	var title string
	if m.outcome.State == flow.StatePartialFailure {
		title = styles.warn.Render("⚠ Playlist Created Without Tracks")
	} else {
		title = styles.ok.Render("✓ Playlist Ready!")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nPlaylist: %s\nURL: %s\n", result.Name, result.URL))
	if result.Mode != "" {
		b.WriteString(fmt.Sprintf("Mode: %s\n", result.Mode))
	}
	if result.StartLabel != "" && result.EndLabel != "" {
		b.WriteString(fmt.Sprintf("Arc: %s → %s\n", result.StartLabel, result.EndLabel))
	}
	if result.StagesCount > 0 {
		b.WriteString(fmt.Sprintf("Stages: %d\n", result.StagesCount))
	}
	b.WriteString(fmt.Sprintf("Tracks: %d added of %d requested\n", result.TracksAdded, result.TracksRequested))

	if m.outcome.State == flow.StatePartialFailure && m.outcome.Message != "" {
		b.WriteString("\n" + styles.warn.Render(m.outcome.Message) + "\n")
	}
	if result.SafetyNote != "" {
		b.WriteString("\n" + styles.help.Render(result.SafetyNote) + "\n")
	}

	if len(result.TrackLinks) > 0 {
		b.WriteString("\nAdd these tracks by hand:\n")
		for i, link := range result.TrackLinks {
			b.WriteString(fmt.Sprintf("  %d. %s - %s\n", i+1, link.Artist, link.Name))
			if link.URL != "" {
				b.WriteString(fmt.Sprintf("     %s\n", link.URL))
			}
		}
	}

	restartKey := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new arc"))
	helpView := m.help.ShortHelpView([]key.Binding{restartKey, m.keys.history, m.keys.open, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderHistory() string {
	if m.history == nil {
		return styles.help.Render("History is not configured.") + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}
	if m.historyErr != nil {
		return styles.err.Render(fmt.Sprintf("Could not load history: %v", m.historyErr)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), helpView)
}
