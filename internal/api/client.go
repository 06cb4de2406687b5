// Package api is the HTTP client for the deck, review and training-stats
// service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/verte-zerg/tuicards/internal/deckfile"
	"github.com/verte-zerg/tuicards/internal/model"
)

// DefaultTimeout is the HTTP client timeout when none is configured.
const DefaultTimeout = 15 * time.Second

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("service returned status %d", e.Code)
	}
	return fmt.Sprintf("service returned status %d: %s", e.Code, e.Detail)
}

// Client talks to the service over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a Client for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DeckPayload is the deck part of a cards-for-deck response.
type DeckPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LangFrom string `json:"lang_from"`
	LangTo   string `json:"lang_to"`
	DueCount int    `json:"due_count"`
}

// CardPayload is one card of a cards-for-deck response.
type CardPayload struct {
	ID        int64  `json:"id"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
	Keyword   string `json:"keyword,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// DeckCardsResponse is the body of GET /cards/deck/{id}.
type DeckCardsResponse struct {
	Deck  DeckPayload   `json:"deck"`
	Cards []CardPayload `json:"cards"`
}

// UpdateStatusRequest is the body of POST /cards/update-status.
type UpdateStatusRequest struct {
	CardID int64  `json:"card_id"`
	Rating string `json:"rating"`
}

// UpdateStatusResponse is the reply to POST /cards/update-status.
type UpdateStatusResponse struct {
	DeckDueCount int `json:"deck_due_count"`
}

// RecordSessionRequest is the body of POST /training-stats/record.
type RecordSessionRequest struct {
	CardsStudied    int `json:"cards_studied"`
	SessionDuration int `json:"session_duration"`
}

// DailyStatPayload is one entry of GET /training-stats/daily.
type DailyStatPayload struct {
	Date         string `json:"date"`
	CardsStudied int    `json:"cardsStudied"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

// DeckCards fetches the due cards of a deck. Card text is stripped of markup.
func (c *Client) DeckCards(ctx context.Context, deckID int64) (model.DeckInfo, []model.Card, error) {
	var resp DeckCardsResponse
	path := "/cards/deck/" + strconv.FormatInt(deckID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return model.DeckInfo{}, nil, errors.Wrapf(err, "failed to fetch deck %d", deckID)
	}
	deck := model.DeckInfo{
		ID:             resp.Deck.ID,
		Name:           resp.Deck.Name,
		SourceLanguage: resp.Deck.LangFrom,
		TargetLanguage: resp.Deck.LangTo,
		DueCount:       resp.Deck.DueCount,
	}
	cards := make([]model.Card, 0, len(resp.Cards))
	for _, p := range resp.Cards {
		cards = append(cards, model.Card{
			ID:        p.ID,
			FrontText: deckfile.CleanCardText(p.FrontText),
			BackText:  deckfile.CleanCardText(p.BackText),
			Keyword:   deckfile.CleanCardText(p.Keyword),
			ImagePath: p.ImagePath,
		})
	}
	return deck, cards, nil
}

// UpdateStatus sends a rating and returns the deck's new due count.
func (c *Client) UpdateStatus(ctx context.Context, cardID int64, rating model.Rating) (int, error) {
	var resp UpdateStatusResponse
	body := UpdateStatusRequest{CardID: cardID, Rating: string(rating)}
	if err := c.do(ctx, http.MethodPost, "/cards/update-status", body, &resp); err != nil {
		return 0, errors.Wrapf(err, "failed to update card %d", cardID)
	}
	return resp.DeckDueCount, nil
}

// RecordSession stores a session summary.
func (c *Client) RecordSession(ctx context.Context, cardsStudied, durationSeconds int) error {
	body := RecordSessionRequest{CardsStudied: cardsStudied, SessionDuration: durationSeconds}
	if err := c.do(ctx, http.MethodPost, "/training-stats/record", body, nil); err != nil {
		return errors.Wrap(err, "failed to record session")
	}
	return nil
}

// DailyStats returns cards studied per day for the last days days.
func (c *Client) DailyStats(ctx context.Context, days int) ([]model.DailyStat, error) {
	var resp []DailyStatPayload
	path := "/training-stats/daily?" + url.Values{"days": {strconv.Itoa(days)}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to fetch daily stats")
	}
	stats := make([]model.DailyStat, 0, len(resp))
	for _, p := range resp {
		stats = append(stats, model.DailyStat{Date: p.Date, CardsStudied: p.CardsStudied})
	}
	return stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			_ = cerr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	serr := &StatusError{Code: resp.StatusCode}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Detail != nil {
		switch d := eb.Detail.(type) {
		case string:
			serr.Detail = d
		default:
			if raw, err := json.Marshal(d); err == nil {
				serr.Detail = string(raw)
			}
		}
	} else {
		serr.Detail = strings.TrimSpace(string(data))
	}
	return serr
}
