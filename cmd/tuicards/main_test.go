package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuicards/internal/config"
	"github.com/verte-zerg/tuicards/internal/model"
)

func TestInspectCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newInspectCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"Je mange une pomme délicieuse", "--answer", "délicieuses"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{"keyword: délicieuse", "gap:     Je mange une pomme _____ (exact)", "answer:  accepted"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestValidateTrainConfig(t *testing.T) {
	trainTimeout = time.Second
	valid := model.TrainConfig{DeckID: 1, Placeholder: "___"}
	if err := validateTrainConfig(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []model.TrainConfig{
		{Placeholder: "___"},
		{DeckID: 1, DeckFile: "deck.tsv", Placeholder: "___"},
		{DeckID: 1, Limit: -1, Placeholder: "___"},
		{DeckID: 1, Placeholder: " "},
	}
	for _, cfg := range cases {
		if err := validateTrainConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestDeckFileFlagOverridesConfiguredDeck(t *testing.T) {
	deck := int64(3)
	limit := 5
	fileCfg := config.FileConfig{Training: config.TrainingConfig{Deck: &deck, Limit: &limit}}

	cmd := newRootCmd()
	if err := cmd.Flags().Set("file", "deck.tsv"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	trainDeck = 0
	if err := applyTrainFileConfig(cmd, fileCfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if trainDeck != 0 || trainLimit != 5 {
		t.Fatalf("expected deck 0 and limit 5, got %d and %d", trainDeck, trainLimit)
	}
	cfg := model.TrainConfig{DeckID: trainDeck, DeckFile: trainFile, Limit: trainLimit, Placeholder: trainGap}
	if err := validateTrainConfig(cfg); err != nil {
		t.Fatalf("deck file with a configured deck should validate: %v", err)
	}

	cmd = newRootCmd()
	trainFile = ""
	if err := applyTrainFileConfig(cmd, fileCfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if trainDeck != 3 {
		t.Fatalf("expected configured deck 3, got %d", trainDeck)
	}
}
