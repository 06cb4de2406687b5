// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuicards/internal/model"
	"github.com/verte-zerg/tuicards/internal/session"
	"github.com/verte-zerg/tuicards/internal/store"
)

type phase int

const (
	phaseAnswer phase = iota
	phaseGraded
	phaseConfirmAbort
	phaseDone
)

const saveTimeout = 5 * time.Second

// DueSource reports the deck due count last returned by the review service.
type DueSource interface {
	DueCount() (int, bool)
}

// drawMsg asks the model to draw the current card once the previous frame is on screen.
type drawMsg struct{}

// unlockMsg re-enables input after a graded card has been rendered.
type unlockMsg struct{}

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	gapStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	contextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	kindStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea training UI and receives session events.
type Model struct {
	ctrl        *session.Controller
	store       *store.Store
	dues        DueSource
	logger      *slog.Logger
	placeholder string

	input  textinput.Model
	width  int
	height int

	phase     phase
	prevPhase phase
	busy      bool
	saved     bool

	prompt  string
	kind    model.ExerciseKind
	hint    string
	context string

	answer   string
	correct  bool
	expected string

	current int
	total   int
	studied int
	notice  string
}

// NewModel constructs a training model. Bind must be called before the
// program starts.
func NewModel(st *store.Store, dues DueSource, logger *slog.Logger, placeholder string) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 256
	input.Focus()
	return &Model{
		store:       st,
		dues:        dues,
		logger:      logger,
		placeholder: placeholder,
		input:       input,
	}
}

// Bind attaches the session the model drives.
func (m *Model) Bind(ctrl *session.Controller) {
	m.ctrl = ctrl
}

// ExerciseReady implements session.Listener.
func (m *Model) ExerciseReady(prompt string, kind model.ExerciseKind, hint string) {
	m.prompt = prompt
	m.kind = kind
	m.hint = hint
	m.answer = ""
	m.expected = ""
	m.input.Reset()
	m.input.Placeholder = hint
	m.phase = phaseAnswer
}

// Graded implements session.Listener.
func (m *Model) Graded(correct bool, answer string) {
	m.correct = correct
	m.expected = answer
	m.phase = phaseGraded
}

// Progress implements session.Listener.
func (m *Model) Progress(current, total int) {
	m.current = current
	m.total = total
}

// SessionFinished implements session.Listener.
func (m *Model) SessionFinished(studied int) {
	m.studied = studied
	m.phase = phaseDone
}

// Error implements session.Listener.
func (m *Model) Error(kind session.ErrorKind, message string) {
	switch kind {
	case session.ErrorEmptyAnswer:
		m.notice = "Type an answer first."
	default:
		m.notice = message
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(textinput.Blink, func() tea.Msg { return drawMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.contentWidth() - 2
		return m, nil
	case drawMsg:
		m.busy = false
		m.drawCurrent()
		return m, nil
	case unlockMsg:
		m.busy = false
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	if m.phase == phaseAnswer {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.abort()
		return m, tea.Quit
	}
	switch m.phase {
	case phaseDone:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			return m, tea.Quit
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case phaseConfirmAbort:
		switch strings.ToLower(msg.String()) {
		case "y":
			m.abort()
			return m, tea.Quit
		case "n", "esc":
			m.phase = m.prevPhase
		}
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.prevPhase = m.phase
		m.phase = phaseConfirmAbort
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch m.phase {
	case phaseAnswer:
		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.notice != "" && msg.Type == tea.KeyRunes {
			m.notice = ""
		}
		return m, cmd
	case phaseGraded:
		if rating, ok := ratingForKey(msg.String()); ok {
			return m, m.rate(rating)
		}
	}
	return m, nil
}

func ratingForKey(key string) (model.Rating, bool) {
	switch strings.ToLower(key) {
	case "1", "a":
		return model.RatingAgain, true
	case "2", "g":
		return model.RatingGood, true
	case "3", "e":
		return model.RatingEasy, true
	}
	return "", false
}

func (m *Model) drawCurrent() {
	if m.ctrl == nil {
		return
	}
	ex, err := m.ctrl.DrawCurrentExercise()
	if err != nil {
		m.logger.Error("failed to draw exercise", "err", err)
		m.notice = err.Error()
		return
	}
	m.context = ex.Context
}

func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if _, err := m.ctrl.SubmitAnswer(text); err != nil {
		if !errors.Is(err, session.ErrEmptyAnswer) {
			m.logger.Warn("failed to submit answer", "err", err)
		}
		return nil
	}
	m.answer = strings.TrimSpace(text)
	m.notice = ""
	m.busy = true
	return func() tea.Msg { return unlockMsg{} }
}

func (m *Model) rate(rating model.Rating) tea.Cmd {
	if err := m.ctrl.Rate(rating); err != nil {
		m.logger.Warn("failed to rate card", "err", err)
		return nil
	}
	if m.ctrl.State() == session.StateFinished {
		m.save()
		return nil
	}
	m.busy = true
	return func() tea.Msg { return drawMsg{} }
}

func (m *Model) abort() {
	if m.ctrl == nil || m.ctrl.State().Terminal() {
		return
	}
	if err := m.ctrl.Abort(); err != nil {
		m.logger.Warn("failed to abort session", "err", err)
		return
	}
	m.save()
}

// save stores a terminal session in the local history once.
func (m *Model) save() {
	if m.saved || m.store == nil || m.ctrl == nil {
		return
	}
	m.saved = true
	snap := m.ctrl.Snapshot()
	if snap.CardsStudiedCount == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := m.store.InsertSession(ctx, m.ctrl.Record(), snap.Answers); err != nil {
		m.logger.Error("failed to save session", "err", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderContent() string {
	if m.phase == phaseDone {
		return fmt.Sprintf("Session complete: %d cards studied.\n\n%s", m.studied, footerStyle.Render("enter to exit"))
	}
	if m.prompt == "" {
		if m.notice != "" {
			return noticeStyle.Render(m.notice)
		}
		return ""
	}
	width := m.contentWidth()
	var b strings.Builder
	b.WriteString(kindStyle.Render(kindLabel(m.kind)))
	b.WriteString("\n\n")
	b.WriteString(wrapStyledRunes(styleText(m.prompt, promptStyle, m.placeholder, gapStyle), width))
	if m.kind == model.GapFill && m.context != "" {
		b.WriteString("\n")
		b.WriteString(wrapStyledRunes(styleText(m.context, contextStyle, "", contextStyle), width))
	}
	b.WriteString("\n\n")

	switch m.phase {
	case phaseAnswer:
		b.WriteString(m.input.View())
	case phaseGraded, phaseConfirmAbort:
		if m.answer != "" {
			b.WriteString("> ")
			b.WriteString(wrapStyledRunes(diffRunes(m.answer, m.expected), width-2))
			b.WriteString("\n")
		}
		if m.correct {
			b.WriteString(correctStyle.Render("Correct: " + m.expected))
		} else {
			b.WriteString(incorrectStyle.Render("Expected: " + m.expected))
		}
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("1 again · 2 good · 3 easy"))
	}
	if m.phase == phaseConfirmAbort {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render("End session now? (y/n)"))
	} else if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	return b.String()
}

func kindLabel(kind model.ExerciseKind) string {
	switch kind {
	case model.GapFill:
		return "Fill the gap"
	case model.ReverseTranslate:
		return "Translate back"
	default:
		return "Translate"
	}
}

func (m *Model) renderFooter() string {
	if m.total == 0 {
		return ""
	}
	segments := []string{fmt.Sprintf("Card %d/%d", m.current, m.total)}
	if m.ctrl != nil {
		rs := m.ctrl.RepeatStats()
		segments = append(segments, fmt.Sprintf("again %d · good %d · easy %d", rs.Again, rs.Good, rs.Easy))
	}
	if due, ok := m.dueCount(); ok {
		segments = append(segments, fmt.Sprintf("Due %d", due))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) dueCount() (int, bool) {
	if m.dues != nil {
		if due, ok := m.dues.DueCount(); ok {
			return due, true
		}
	}
	if m.ctrl != nil && m.ctrl.Deck().DueCount > 0 {
		return m.ctrl.Deck().DueCount, true
	}
	return 0, false
}
