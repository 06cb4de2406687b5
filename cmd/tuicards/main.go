// Package main provides the CLI entrypoint for tuicards.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuicards/internal/answer"
	"github.com/verte-zerg/tuicards/internal/api"
	"github.com/verte-zerg/tuicards/internal/config"
	"github.com/verte-zerg/tuicards/internal/deckfile"
	"github.com/verte-zerg/tuicards/internal/gapfill"
	"github.com/verte-zerg/tuicards/internal/generator"
	"github.com/verte-zerg/tuicards/internal/model"
	"github.com/verte-zerg/tuicards/internal/review"
	"github.com/verte-zerg/tuicards/internal/session"
	"github.com/verte-zerg/tuicards/internal/stats"
	"github.com/verte-zerg/tuicards/internal/store"
	"github.com/verte-zerg/tuicards/internal/tui"
)

const (
	defaultBaseURL    = "http://localhost:8787"
	defaultWeakTop    = 10
	defaultWeakWindow = 20
	flushTimeout      = 5 * time.Second
)

var (
	trainDeck       int64
	trainFile       string
	trainLimit      int
	trainShuffle    bool
	trainFocusWeak  bool
	trainWeakWindow int
	trainWeakTop    int
	trainGap        string
	trainBaseURL    string
	trainToken      string
	trainTimeout    time.Duration
	trainConfigPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuicards",
		Short:         "TUI flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTrainCmd,
	}

	rootCmd.PersistentFlags().StringVar(&trainConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tuicards/config.toml)")
	rootCmd.Flags().Int64Var(&trainDeck, "deck", 0, "deck id to train from the review service")
	rootCmd.Flags().StringVar(&trainFile, "file", "", "train offline from a TSV deck file")
	rootCmd.Flags().IntVar(&trainLimit, "limit", 0, "maximum cards per session (0: all due cards)")
	rootCmd.Flags().BoolVar(&trainShuffle, "shuffle", false, "shuffle cards before training")
	rootCmd.Flags().BoolVar(&trainFocusWeak, "focus-weak", false, "train recently missed cards first")
	rootCmd.Flags().IntVar(&trainWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to find weak cards")
	rootCmd.Flags().IntVar(&trainWeakTop, "weak-top", defaultWeakTop, "number of weak cards to move to the front")
	rootCmd.Flags().StringVar(&trainGap, "gap", gapfill.DefaultPlaceholder, "gap marker for fill-the-gap exercises")
	rootCmd.Flags().StringVar(&trainBaseURL, "api-url", defaultBaseURL, "review service base URL")
	rootCmd.Flags().StringVar(&trainToken, "token", "", "review service bearer token")
	rootCmd.Flags().DurationVar(&trainTimeout, "timeout", review.DefaultTimeout, "timeout for review service calls")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// loadFileConfig reads .env, the TOML file and TUICARDS_* variables, in that
// order of increasing precedence.
func loadFileConfig() (config.FileConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.FileConfig{}, err
	}
	path := trainConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(&fileCfg)
	return fileCfg, nil
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	if err := applyTrainFileConfig(cmd, fileCfg); err != nil {
		return err
	}

	cfg := model.TrainConfig{
		DeckID:      trainDeck,
		DeckFile:    trainFile,
		Limit:       trainLimit,
		Shuffle:     trainShuffle,
		FocusWeak:   trainFocusWeak,
		WeakWindow:  trainWeakWindow,
		WeakTop:     trainWeakTop,
		Placeholder: trainGap,
	}
	if err := validateTrainConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := openFileLogger(fileCfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	deck, cards, svc, err := loadCards(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	synth := gapfill.New(cfg.Placeholder)
	gen := generator.New(synth)
	if cfg.FocusWeak {
		cards = focusWeak(cmd.Context(), st, cfg, deck.ID, cards, logger)
	}
	if cfg.Shuffle {
		gen.Shuffle(cards)
	}
	if cfg.Limit > 0 && len(cards) > cfg.Limit {
		cards = cards[:cfg.Limit]
	}

	recorder := review.NewRecorder(svc, logger, trainTimeout)
	m := tui.NewModel(st, recorder, logger, synth.Placeholder())
	ctrl := session.New(gen, answer.NewEvaluator(), recorder, m,
		session.WithDeck(deck),
		session.WithLogger(logger),
	)
	m.Bind(ctrl)
	if err := ctrl.Start(cards); err != nil {
		if errors.Is(err, session.ErrEmptyDeck) {
			return fmt.Errorf("deck %q has no cards due for review", deck.Name)
		}
		return fmt.Errorf("failed to start session: %w", err)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := program.Run()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := recorder.Wait(ctx); err != nil {
		logErrln("some review updates were still pending on exit")
	}
	if n := recorder.Failures(); n > 0 {
		logErrf("%d review update(s) failed; see %s\n", n, logPathFor(fileCfg.Log))
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// applyTrainFileConfig copies config values into flags the user did not set.
// A deck file on the command line wins over a configured deck id.
func applyTrainFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) error {
	applyStringConfig(cmd, "api-url", &trainBaseURL, fileCfg.API.BaseURL)
	applyStringConfig(cmd, "token", &trainToken, fileCfg.API.Token)
	if err := applyDurationConfig(cmd, "timeout", &trainTimeout, fileCfg.API.Timeout); err != nil {
		return err
	}
	if !cmd.Flags().Changed("file") {
		applyInt64Config(cmd, "deck", &trainDeck, fileCfg.Training.Deck)
	}
	applyIntConfig(cmd, "limit", &trainLimit, fileCfg.Training.Limit)
	applyBoolConfig(cmd, "shuffle", &trainShuffle, fileCfg.Training.Shuffle)
	applyBoolConfig(cmd, "focus-weak", &trainFocusWeak, fileCfg.Training.FocusWeak)
	applyIntConfig(cmd, "weak-window", &trainWeakWindow, fileCfg.Training.WeakWindow)
	applyIntConfig(cmd, "weak-top", &trainWeakTop, fileCfg.Training.WeakTop)
	applyStringConfig(cmd, "gap", &trainGap, fileCfg.Training.Gap)
	return nil
}

// loadCards fetches due cards from the review service, or reads a deck file
// and pairs it with an offline review service.
func loadCards(ctx context.Context, cfg model.TrainConfig, logger *slog.Logger) (model.DeckInfo, []model.Card, review.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.DeckFile != "" {
		deck, cards, err := deckfile.LoadDeck(cfg.DeckFile)
		if err != nil {
			return model.DeckInfo{}, nil, nil, err
		}
		return deck, cards, review.NewOffline(cards, logger), nil
	}
	client := api.New(trainBaseURL, trainToken, trainTimeout)
	deck, cards, err := client.DeckCards(ctx, cfg.DeckID)
	if err != nil {
		return model.DeckInfo{}, nil, nil, fmt.Errorf("failed to fetch deck %d: %w", cfg.DeckID, err)
	}
	logger.Info("fetched deck", "deck", deck.ID, "name", deck.Name, "cards", len(cards), "due", deck.DueCount)
	return deck, cards, client, nil
}

func focusWeak(ctx context.Context, st *store.Store, cfg model.TrainConfig, deckID int64, cards []model.Card, logger *slog.Logger) []model.Card {
	if ctx == nil {
		ctx = context.Background()
	}
	aggs, err := st.GetWeakCards(ctx, cfg.WeakWindow, deckID)
	if err != nil {
		logger.Warn("failed to load weak cards", "err", err)
		return cards
	}
	weak := stats.SelectWeakCards(aggs, cfg.WeakTop)
	if len(weak) == 0 {
		logErrln("no history available for weak-card focus yet; using service order")
		return cards
	}
	return stats.PrioritizeCards(cards, weak)
}

// openFileLogger sends logs to a file so they do not corrupt the alt screen.
func openFileLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	level, err := logLevel(cfg)
	if err != nil {
		return nil, nil, err
	}
	path := logPathFor(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}, nil
}

func newStderrLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logLevel(cfg)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func logLevel(cfg config.LogConfig) (slog.Level, error) {
	if cfg.Level == nil {
		return slog.LevelInfo, nil
	}
	level, err := config.ParseLevel(*cfg.Level)
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

func logPathFor(cfg config.LogConfig) string {
	if cfg.File != nil && strings.TrimSpace(*cfg.File) != "" {
		return *cfg.File
	}
	return config.DefaultLogPath()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := trainConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil || cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func validateTrainConfig(cfg model.TrainConfig) error {
	if cfg.DeckFile == "" && cfg.DeckID <= 0 {
		return fmt.Errorf("--deck or --file is required")
	}
	if cfg.DeckFile != "" && cfg.DeckID > 0 {
		return fmt.Errorf("--deck and --file are mutually exclusive")
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if strings.TrimSpace(cfg.Placeholder) == "" {
		return fmt.Errorf("--gap must not be empty")
	}
	if trainTimeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	return nil
}

func writeOut(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
