// Package deckfile loads flashcard decks from tab-separated files.
//
// A deck file starts with optional "# key: value" headers (id, name, from,
// to) followed by one card per line:
//
//	front<TAB>back[<TAB>keyword[<TAB>image]]
package deckfile

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/verte-zerg/tuicards/internal/model"
)

var strict = bluemonday.StrictPolicy()

// CleanCardText strips markup from card text and decodes HTML entities.
func CleanCardText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// LoadDeck reads a deck from the provided file path.
func LoadDeck(path string) (model.DeckInfo, []model.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.DeckInfo{}, nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only deck file.
			_ = cerr
		}
	}()

	deck, cards, err := ParseDeck(file)
	if err != nil {
		return model.DeckInfo{}, nil, fmt.Errorf("failed to parse deck %s: %w", path, err)
	}
	if deck.Name == "" {
		deck.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return deck, cards, nil
}

// ParseDeck reads a deck from r. Every card is due.
func ParseDeck(r io.Reader) (model.DeckInfo, []model.Card, error) {
	var deck model.DeckInfo
	var cards []model.Card
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := applyHeader(&deck, strings.TrimPrefix(line, "#")); err != nil {
				return model.DeckInfo{}, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return model.DeckInfo{}, nil, fmt.Errorf("line %d: expected front and back separated by a tab", lineNo)
		}
		card := model.Card{
			ID:        int64(len(cards) + 1),
			FrontText: CleanCardText(fields[0]),
			BackText:  CleanCardText(fields[1]),
		}
		if len(fields) > 2 {
			card.Keyword = CleanCardText(fields[2])
		}
		if len(fields) > 3 {
			card.ImagePath = strings.TrimSpace(fields[3])
		}
		if card.FrontText == "" || card.BackText == "" {
			return model.DeckInfo{}, nil, fmt.Errorf("line %d: front and back must not be empty", lineNo)
		}
		cards = append(cards, card)
	}
	if err := scanner.Err(); err != nil {
		return model.DeckInfo{}, nil, err
	}
	if len(cards) == 0 {
		return model.DeckInfo{}, nil, fmt.Errorf("deck is empty")
	}
	deck.DueCount = len(cards)
	return deck, cards, nil
}

func applyHeader(deck *model.DeckInfo, line string) error {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deck id %q", value)
		}
		deck.ID = id
	case "name":
		deck.Name = value
	case "from":
		deck.SourceLanguage = value
	case "to":
		deck.TargetLanguage = value
	}
	return nil
}
