// Package devserver is an in-memory implementation of the deck, review and
// training-stats service, for offline practice and client tests.
package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/tuicards/internal/api"
	"github.com/verte-zerg/tuicards/internal/model"
)

const (
	maxIntervalDays = 30
	defaultDays     = 7
	dateLayout      = "2006-01-02"
)

type cardState struct {
	card       model.Card
	deckID     int64
	interval   float64
	streak     int
	nextReview time.Time
}

type deckState struct {
	info  model.DeckInfo
	cards []int64
}

// Server holds decks, card schedules and per-day study totals.
type Server struct {
	token  string
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	decks      map[int64]*deckState
	cards      map[int64]*cardState
	nextCardID int64
	daily      map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty Server.
func New(opts ...Option) *Server {
	s := &Server{
		logger: slog.Default(),
		now:    time.Now,
		decks:  map[int64]*deckState{},
		cards:  map[int64]*cardState{},
		daily:  map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDeck registers a deck. Cards get server-wide IDs; a zero deck ID is
// replaced with the next free one. It returns the stored deck ID.
func (s *Server) AddDeck(info model.DeckInfo, cards []model.Card) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.ID == 0 || s.decks[info.ID] != nil {
		info.ID = s.nextDeckID()
	}
	deck := &deckState{info: info}
	for _, c := range cards {
		s.nextCardID++
		c.ID = s.nextCardID
		s.cards[c.ID] = &cardState{card: c, deckID: info.ID, interval: 1}
		deck.cards = append(deck.cards, c.ID)
	}
	s.decks[info.ID] = deck
	return info.ID
}

func (s *Server) nextDeckID() int64 {
	var id int64 = 1
	for s.decks[id] != nil {
		id++
	}
	return id
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/deck/{id}", s.deckCards)
			r.Post("/update-status", s.updateStatus)
		})
		r.Route("/training-stats", func(r chi.Router) {
			r.Post("/record", s.recordSession)
			r.Get("/daily", s.dailyStats)
		})
	})
	return r
}

func (s *Server) deckCards(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deck id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deck := s.decks[id]
	if deck == nil {
		writeError(w, http.StatusNotFound, "Deck not found")
		return
	}
	now := s.now()
	resp := api.DeckCardsResponse{
		Deck: api.DeckPayload{
			ID:       deck.info.ID,
			Name:     deck.info.Name,
			LangFrom: deck.info.SourceLanguage,
			LangTo:   deck.info.TargetLanguage,
			DueCount: s.dueCount(deck, now),
		},
		Cards: []api.CardPayload{},
	}
	for _, cid := range s.dueCards(deck, now) {
		c := s.cards[cid].card
		resp.Cards = append(resp.Cards, api.CardPayload{
			ID:        c.ID,
			FrontText: c.FrontText,
			BackText:  c.BackText,
			Keyword:   c.Keyword,
			ImagePath: c.ImagePath,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rating, err := model.ParseRating(req.Rating)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.cards[req.CardID]
	if cs == nil {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	now := s.now()
	schedule(cs, rating, now)
	writeJSON(w, http.StatusOK, api.UpdateStatusResponse{DeckDueCount: s.dueCount(s.decks[cs.deckID], now)})
}

func (s *Server) recordSession(w http.ResponseWriter, r *http.Request) {
	var req api.RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CardsStudied < 0 || req.SessionDuration < 0 {
		writeError(w, http.StatusUnprocessableEntity, "cards_studied and session_duration must not be negative")
		return
	}
	s.mu.Lock()
	day := s.now().Format(dateLayout)
	s.daily[day] += req.CardsStudied
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Training session recorded successfully",
		"date":          day,
		"cards_studied": req.CardsStudied,
	})
}

func (s *Server) dailyStats(w http.ResponseWriter, r *http.Request) {
	days := defaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "days must be a positive integer")
			return
		}
		days = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.now()
	out := make([]api.DailyStatPayload, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).Format(dateLayout)
		out = append(out, api.DailyStatPayload{Date: day, CardsStudied: s.daily[day]})
	}
	writeJSON(w, http.StatusOK, out)
}

// schedule moves the card's next review. Again keeps it due; good and easy
// grow the interval up to maxIntervalDays.
func schedule(cs *cardState, rating model.Rating, now time.Time) {
	switch rating {
	case model.RatingAgain:
		cs.streak = 0
		cs.interval = 1
		cs.nextReview = time.Time{}
		return
	case model.RatingGood:
		cs.interval *= 2
	case model.RatingEasy:
		cs.interval *= 3
	}
	cs.streak++
	if cs.interval > maxIntervalDays {
		cs.interval = maxIntervalDays
	}
	cs.nextReview = now.Add(time.Duration(cs.interval * float64(24*time.Hour)))
}

func (s *Server) dueCards(deck *deckState, now time.Time) []int64 {
	var due []int64
	for _, id := range deck.cards {
		cs := s.cards[id]
		if cs.nextReview.IsZero() || !now.Before(cs.nextReview) {
			due = append(due, id)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return s.cards[due[i]].nextReview.Before(s.cards[due[j]].nextReview)
	})
	return due
}

func (s *Server) dueCount(deck *deckState, now time.Time) int {
	if deck == nil {
		return 0
	}
	return len(s.dueCards(deck, now))
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != s.token {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "Invalid authentication credentials")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
