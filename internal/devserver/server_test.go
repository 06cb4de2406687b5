package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuicards/internal/api"
	"github.com/verte-zerg/tuicards/internal/model"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newServer(t *testing.T, opts ...Option) (*Server, *clock, int64) {
	t.Helper()
	c := &clock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := New(append([]Option{WithClock(c.now)}, opts...)...)
	id := s.AddDeck(model.DeckInfo{ID: 5, Name: "French", SourceLanguage: "fr", TargetLanguage: "en"}, []model.Card{
		{FrontText: "la pomme", BackText: "the apple", Keyword: "pomme"},
		{FrontText: "le chien", BackText: "the dog"},
	})
	return s, c, id
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDeckCards(t *testing.T) {
	s, _, id := newServer(t)
	rr := do(t, s.Handler(), http.MethodGet, "/cards/deck/5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(5), id)

	var resp api.DeckCardsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "French", resp.Deck.Name)
	assert.Equal(t, "fr", resp.Deck.LangFrom)
	assert.Equal(t, 2, resp.Deck.DueCount)
	require.Len(t, resp.Cards, 2)
	assert.Equal(t, "pomme", resp.Cards[0].Keyword)
}

func TestDeckCardsNotFound(t *testing.T) {
	s, _, _ := newServer(t)
	rr := do(t, s.Handler(), http.MethodGet, "/cards/deck/99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Deck not found")

	rr = do(t, s.Handler(), http.MethodGet, "/cards/deck/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateStatusSchedulesCards(t *testing.T) {
	s, c, _ := newServer(t)
	h := s.Handler()

	rr := do(t, h, http.MethodPost, "/cards/update-status", api.UpdateStatusRequest{CardID: 1, Rating: "good"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp api.UpdateStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.DeckDueCount)

	rr = do(t, h, http.MethodPost, "/cards/update-status", api.UpdateStatusRequest{CardID: 2, Rating: "again"})
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.DeckDueCount)

	c.t = c.t.Add(3 * 24 * time.Hour)
	rr = do(t, h, http.MethodGet, "/cards/deck/5", nil)
	var deck api.DeckCardsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &deck))
	assert.Equal(t, 2, deck.Deck.DueCount)
}

func TestUpdateStatusValidation(t *testing.T) {
	s, _, _ := newServer(t)
	h := s.Handler()
	rr := do(t, h, http.MethodPost, "/cards/update-status", api.UpdateStatusRequest{CardID: 1, Rating: "perfect"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/cards/update-status", api.UpdateStatusRequest{CardID: 42, Rating: "good"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecordAndDailyStats(t *testing.T) {
	s, c, _ := newServer(t)
	h := s.Handler()

	rr := do(t, h, http.MethodPost, "/training-stats/record", api.RecordSessionRequest{CardsStudied: 4, SessionDuration: 60})
	require.Equal(t, http.StatusOK, rr.Code)
	c.t = c.t.Add(24 * time.Hour)
	do(t, h, http.MethodPost, "/training-stats/record", api.RecordSessionRequest{CardsStudied: 2})
	do(t, h, http.MethodPost, "/training-stats/record", api.RecordSessionRequest{CardsStudied: 3})

	rr = do(t, h, http.MethodGet, "/training-stats/daily?days=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats []api.DailyStatPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, []api.DailyStatPayload{
		{Date: "2024-03-09", CardsStudied: 0},
		{Date: "2024-03-10", CardsStudied: 4},
		{Date: "2024-03-11", CardsStudied: 5},
	}, stats)

	rr = do(t, h, http.MethodGet, "/training-stats/daily?days=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestTokenRequired(t *testing.T) {
	s, _, _ := newServer(t, WithToken("secret"))
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/cards/deck/5", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/cards/deck/5", nil)
	req.Header.Set("Authorization", "Bearer secret")
	ok := httptest.NewRecorder()
	h.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	rr = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAddDeckAssignsIDs(t *testing.T) {
	s := New()
	first := s.AddDeck(model.DeckInfo{}, []model.Card{{FrontText: "a", BackText: "b"}})
	second := s.AddDeck(model.DeckInfo{ID: first}, []model.Card{{FrontText: "c", BackText: "d"}})
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}
