// Package session drives one training run: draw, grade, rate, advance.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuicards/internal/generator"
	"github.com/verte-zerg/tuicards/internal/model"
)

// State is the controller's position in the training flow.
type State int

// Controller states. Graded overlays InProgress until the card is rated.
const (
	StateNotStarted State = iota
	StateInProgress
	StateGraded
	StateFinished
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateGraded:
		return "graded"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted
}

var (
	ErrEmptyDeck     = errors.New("deck has no cards to train")
	ErrEmptyAnswer   = errors.New("answer is empty")
	ErrNotStarted    = errors.New("session not started")
	ErrNotDrawn      = errors.New("no exercise drawn for the current card")
	ErrNotGraded     = errors.New("current card has not been graded")
	ErrAlreadyGraded = errors.New("current card is already graded")
	ErrSessionOver   = errors.New("session is over")
)

// ErrorKind classifies errors reported to the Listener.
type ErrorKind string

const (
	ErrorEmptyDeck   ErrorKind = "empty-deck"
	ErrorEmptyAnswer ErrorKind = "empty-answer"
)

// Selector draws the exercise for a card.
type Selector interface {
	Draw(card *model.Card, deck model.DeckInfo) generator.Exercise
}

// Evaluator grades an answer against the expected one.
type Evaluator interface {
	Accept(userAnswer, correctAnswer string) bool
}

// Recorder forwards ratings and the session summary. Calls must not block.
type Recorder interface {
	UpdateStatus(cardID int64, rating model.Rating)
	RecordSession(cardsStudied, durationSeconds int)
}

// Listener receives session events.
type Listener interface {
	ExerciseReady(prompt string, kind model.ExerciseKind, hint string)
	Graded(correct bool, answer string)
	Progress(current, total int)
	SessionFinished(studied int)
	Error(kind ErrorKind, message string)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) ExerciseReady(string, model.ExerciseKind, string) {}
func (NopListener) Graded(bool, string)                             {}
func (NopListener) Progress(int, int)                               {}
func (NopListener) SessionFinished(int)                             {}
func (NopListener) Error(ErrorKind, string)                         {}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for session events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDeck sets the deck context passed to the selector.
func WithDeck(deck model.DeckInfo) Option {
	return func(c *Controller) {
		c.deck = deck
	}
}

// Controller owns the state of a single session. It is not safe for
// concurrent use; the UI drives it from one goroutine.
type Controller struct {
	id        uuid.UUID
	selector  Selector
	evaluator Evaluator
	recorder  Recorder
	listener  Listener
	logger    *slog.Logger
	now       func() time.Time
	deck      model.DeckInfo

	state    State
	st       model.SessionState
	drawn    int
	exercise generator.Exercise
	endedAt  time.Time
}

// New returns a Controller in StateNotStarted.
func New(selector Selector, evaluator Evaluator, recorder Recorder, listener Listener, opts ...Option) *Controller {
	if listener == nil {
		listener = NopListener{}
	}
	c := &Controller{
		id:        uuid.New(),
		selector:  selector,
		evaluator: evaluator,
		recorder:  recorder,
		listener:  listener,
		logger:    slog.Default(),
		now:       time.Now,
		drawn:     -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("session", c.id.String())
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Deck returns the deck context.
func (c *Controller) Deck() model.DeckInfo {
	return c.deck
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Start begins the session over cards.
func (c *Controller) Start(cards []model.Card) error {
	if c.state != StateNotStarted {
		return fmt.Errorf("failed to start session: already %s", c.state)
	}
	if len(cards) == 0 {
		c.listener.Error(ErrorEmptyDeck, ErrEmptyDeck.Error())
		return ErrEmptyDeck
	}
	c.st = model.SessionState{
		Cards:        append([]model.Card(nil), cards...),
		CurrentIndex: 0,
		TotalCards:   len(cards),
		StartTime:    c.now(),
	}
	c.state = StateInProgress
	c.logger.Info("session started", "deck", c.deck.ID, "cards", len(cards))
	return nil
}

// DrawCurrentExercise selects the exercise for the current card. Repeated
// calls for the same card return the same exercise without drawing again.
func (c *Controller) DrawCurrentExercise() (generator.Exercise, error) {
	if err := c.checkActive(); err != nil {
		return generator.Exercise{}, err
	}
	idx := c.st.CurrentIndex
	if c.drawn != idx {
		card := &c.st.Cards[idx]
		c.exercise = c.selector.Draw(card, c.deck)
		c.drawn = idx
		c.logger.Debug("exercise drawn", "card", card.ID, "kind", c.exercise.Kind.String())
	}
	c.listener.ExerciseReady(c.exercise.Prompt, c.exercise.Kind, c.exercise.Hint)
	c.listener.Progress(idx+1, c.st.TotalCards)
	return c.exercise, nil
}

// SubmitAnswer grades text against the current card. It does not advance.
func (c *Controller) SubmitAnswer(text string) (bool, error) {
	if err := c.checkActive(); err != nil {
		return false, err
	}
	if c.state == StateGraded {
		return false, ErrAlreadyGraded
	}
	if c.drawn != c.st.CurrentIndex {
		return false, ErrNotDrawn
	}
	if strings.TrimSpace(text) == "" {
		c.listener.Error(ErrorEmptyAnswer, ErrEmptyAnswer.Error())
		return false, ErrEmptyAnswer
	}
	card := &c.st.Cards[c.st.CurrentIndex]
	ok := c.evaluator.Accept(text, card.ExpectedAnswer)
	card.LastAnswerCorrect = &ok
	c.state = StateGraded
	c.listener.Graded(ok, card.ExpectedAnswer)
	return ok, nil
}

// Rate records the learner's rating for the graded card and advances.
func (c *Controller) Rate(r model.Rating) error {
	if err := c.checkActive(); err != nil {
		return err
	}
	if c.state != StateGraded {
		return ErrNotGraded
	}
	rating, err := model.ParseRating(string(r))
	if err != nil {
		return fmt.Errorf("failed to rate card: %w", err)
	}
	card := c.st.Cards[c.st.CurrentIndex]
	c.st.RepeatStats.Add(rating)
	c.st.CardsStudiedCount++
	correct := card.LastAnswerCorrect != nil && *card.LastAnswerCorrect
	c.st.Answers = append(c.st.Answers, model.AnswerRecord{
		CardID:  card.ID,
		Kind:    card.ExerciseType,
		Correct: correct,
		Rating:  rating,
	})
	if c.recorder != nil {
		c.recorder.UpdateStatus(card.ID, rating)
	}
	c.st.CurrentIndex++

	if c.st.CurrentIndex == c.st.TotalCards {
		c.finish(StateFinished)
		c.listener.SessionFinished(c.st.CardsStudiedCount)
		return nil
	}
	c.state = StateInProgress
	return nil
}

// Abort ends the session early. Studied cards are still reported.
func (c *Controller) Abort() error {
	if c.state.Terminal() {
		return ErrSessionOver
	}
	if c.state == StateNotStarted {
		c.state = StateAborted
		c.endedAt = c.now()
		return nil
	}
	c.finish(StateAborted)
	return nil
}

// RepeatStats returns the rating counters without copying the session.
func (c *Controller) RepeatStats() model.RepeatStats {
	return c.st.RepeatStats
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() model.SessionState {
	st := c.st
	st.Cards = append([]model.Card(nil), c.st.Cards...)
	st.Answers = append([]model.AnswerRecord(nil), c.st.Answers...)
	return st
}

// Record converts a terminal session into a history record.
func (c *Controller) Record() model.SessionRecord {
	ended := c.endedAt
	if ended.IsZero() {
		ended = c.now()
	}
	return model.SessionRecord{
		UUID:         c.id.String(),
		DeckID:       c.deck.ID,
		DeckName:     c.deck.Name,
		StartedAt:    c.st.StartTime,
		EndedAt:      ended,
		CardsTotal:   c.st.TotalCards,
		CardsStudied: c.st.CardsStudiedCount,
		Again:        c.st.RepeatStats.Again,
		Good:         c.st.RepeatStats.Good,
		Easy:         c.st.RepeatStats.Easy,
		Aborted:      c.state == StateAborted,
		DurationMs:   ended.Sub(c.st.StartTime).Milliseconds(),
	}
}

func (c *Controller) checkActive() error {
	switch {
	case c.state == StateNotStarted:
		return ErrNotStarted
	case c.state.Terminal():
		return ErrSessionOver
	}
	return nil
}

func (c *Controller) finish(state State) {
	c.endedAt = c.now()
	c.state = state
	studied := c.st.CardsStudiedCount
	seconds := int(c.endedAt.Sub(c.st.StartTime).Seconds())
	if studied > 0 && c.recorder != nil {
		c.recorder.RecordSession(studied, seconds)
	}
	c.logger.Info("session ended",
		"state", state.String(),
		"studied", studied,
		"total", c.st.TotalCards,
		"again", c.st.RepeatStats.Again,
		"good", c.st.RepeatStats.Good,
		"easy", c.st.RepeatStats.Easy,
		"seconds", seconds,
	)
}
