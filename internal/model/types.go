// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ExerciseKind is the kind of exercise drawn for a card.
type ExerciseKind int

// Exercise kinds.
const (
	Translate ExerciseKind = iota
	ReverseTranslate
	GapFill
)

func (k ExerciseKind) String() string {
	switch k {
	case Translate:
		return "translate"
	case ReverseTranslate:
		return "reverse"
	case GapFill:
		return "gapfill"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseExerciseKind maps a stored kind name back to its value.
func ParseExerciseKind(s string) (ExerciseKind, error) {
	switch s {
	case "translate":
		return Translate, nil
	case "reverse":
		return ReverseTranslate, nil
	case "gapfill":
		return GapFill, nil
	default:
		return 0, fmt.Errorf("unknown exercise kind %q", s)
	}
}

// Rating is the learner's self-reported recall quality.
type Rating string

// Ratings accepted by the review service.
const (
	RatingAgain Rating = "again"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// ParseRating validates a rating label.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case RatingAgain, RatingGood, RatingEasy:
		return r, nil
	default:
		return "", fmt.Errorf("unknown rating %q", s)
	}
}

// Card is a flashcard as served by the deck service.
type Card struct {
	ID        int64
	FrontText string
	BackText  string
	Keyword   string
	ImagePath string

	// Set on every draw.
	ExerciseType      ExerciseKind
	ExpectedAnswer    string
	LastAnswerCorrect *bool
}

// DeckInfo is read-only deck context.
type DeckInfo struct {
	ID             int64
	Name           string
	SourceLanguage string
	TargetLanguage string
	DueCount       int
}

// RepeatStats counts ratings given during a session.
type RepeatStats struct {
	Again int
	Good  int
	Easy  int
}

// Add increments the counter for r.
func (s *RepeatStats) Add(r Rating) {
	switch r {
	case RatingAgain:
		s.Again++
	case RatingGood:
		s.Good++
	case RatingEasy:
		s.Easy++
	}
}

// Total returns the number of ratings recorded.
func (s RepeatStats) Total() int {
	return s.Again + s.Good + s.Easy
}

// AnswerRecord is the outcome of one rated card.
type AnswerRecord struct {
	CardID  int64
	Kind    ExerciseKind
	Correct bool
	Rating  Rating
}

// SessionState is the mutable state of one training session.
type SessionState struct {
	Cards             []Card
	CurrentIndex      int
	TotalCards        int
	StartTime         time.Time
	CardsStudiedCount int
	RepeatStats       RepeatStats
	Answers           []AnswerRecord
}

// TrainConfig defines training settings.
type TrainConfig struct {
	DeckID      int64
	DeckFile    string
	Limit       int
	Shuffle     bool
	FocusWeak   bool
	WeakWindow  int
	WeakTop     int
	Placeholder string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	DeckID      int64
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionRecord captures a finished or aborted session for the local history.
type SessionRecord struct {
	UUID         string
	DeckID       int64
	DeckName     string
	StartedAt    time.Time
	EndedAt      time.Time
	CardsTotal   int
	CardsStudied int
	Again        int
	Good         int
	Easy         int
	Aborted      bool
	DurationMs   int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID    int64
	EndedAt      time.Time
	CardsStudied int
	Correct      int
	Incorrect    int
	Aborted      bool
	DurationMs   int64
}

// KindAggregate aggregates answers per exercise kind.
type KindAggregate struct {
	Kind      ExerciseKind
	Correct   int
	Incorrect int
}

// CardAggregate aggregates answers per card.
type CardAggregate struct {
	CardID    int64
	Correct   int
	Incorrect int
	Again     int
}

// DailyStat is the number of cards studied on one day.
type DailyStat struct {
	Date         string
	CardsStudied int
}
