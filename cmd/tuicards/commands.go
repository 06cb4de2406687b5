package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuicards/internal/answer"
	"github.com/verte-zerg/tuicards/internal/api"
	"github.com/verte-zerg/tuicards/internal/config"
	"github.com/verte-zerg/tuicards/internal/deckfile"
	"github.com/verte-zerg/tuicards/internal/devserver"
	"github.com/verte-zerg/tuicards/internal/gapfill"
	"github.com/verte-zerg/tuicards/internal/keyword"
	"github.com/verte-zerg/tuicards/internal/model"
	"github.com/verte-zerg/tuicards/internal/stats"
	"github.com/verte-zerg/tuicards/internal/statsui"
	"github.com/verte-zerg/tuicards/internal/store"
)

const (
	defaultCurveWindow = 20
	defaultDays        = 7
	defaultServeAddr   = ":8787"
	shutdownTimeout    = 5 * time.Second
)

var (
	statsDeck        int64
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsDays        int
	statsWeakTop     int
	statsRemote      bool
	statsTUI         bool

	serveDecks []string
	serveAddr  string
	serveToken string

	inspectKeyword string
	inspectAnswer  string
	inspectGap     string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show training stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().Int64Var(&statsDeck, "deck", 0, "deck filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsDays, "days", defaultDays, "days in the daily table")
	cmd.Flags().IntVar(&statsWeakTop, "weak-top", defaultWeakTop, "number of weak cards to list")
	cmd.Flags().BoolVar(&statsRemote, "remote", false, "read daily totals from the review service")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse stats interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}

	cfg := model.StatsConfig{
		DeckID:      statsDeck,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
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

	if statsTUI {
		program := tea.NewProgram(statsui.NewModel(st, cfg, statsWeakTop), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg, statsWeakTop)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderKindTable(out, "By exercise (all)", report.KindsAll); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	windowSize := len(report.Sessions)
	if cfg.CurveWindow > 0 && windowSize > cfg.CurveWindow {
		windowSize = cfg.CurveWindow
	}
	if err := stats.RenderKindTable(out, fmt.Sprintf("By exercise (last %d)", windowSize), report.KindsWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.WeakCards) > 0 {
		if err := writeOut(out, "Weak cards:\n"); err != nil {
			return err
		}
		for _, id := range report.WeakCards {
			agg := report.WeakCardCounts[id]
			if err := writeOut(out, "  #%d  correct %d  incorrect %d  again %d\n", id, agg.Correct, agg.Incorrect, agg.Again); err != nil {
				return err
			}
		}
		if err := writeOut(out, "\n"); err != nil {
			return err
		}
	}

	daily, err := dailyStats(ctx, report.Sessions)
	if err != nil {
		return err
	}
	if err := stats.RenderDaily(out, daily); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func dailyStats(ctx context.Context, sessions []model.SessionAggregate) ([]model.DailyStat, error) {
	if !statsRemote {
		return stats.DailyTotals(sessions, statsDays, time.Now()), nil
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}
	baseURL, token := defaultBaseURL, ""
	if fileCfg.API.BaseURL != nil {
		baseURL = *fileCfg.API.BaseURL
	}
	if fileCfg.API.Token != nil {
		token = *fileCfg.API.Token
	}
	client := api.New(baseURL, token, api.DefaultTimeout)
	days, err := client.DailyStats(ctx, statsDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily stats: %w", err)
	}
	return days, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local review service seeded from deck files",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringArrayVar(&serveDecks, "deck", nil, "TSV deck file (repeatable)")
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&serveToken, "token", "", "require this bearer token")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if len(serveDecks) == 0 {
		return fmt.Errorf("at least one --deck is required")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger, err := newStderrLogger(fileCfg.Log)
	if err != nil {
		return err
	}

	srv := devserver.New(devserver.WithToken(serveToken), devserver.WithLogger(logger))
	for _, path := range serveDecks {
		deck, cards, err := deckfile.LoadDeck(path)
		if err != nil {
			return err
		}
		id := srv.AddDeck(deck, cards)
		logger.Info("loaded deck", "id", id, "name", deck.Name, "cards", len(cards), "path", path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", serveAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <phrase>",
		Short: "Show the keyword and gap chosen for a phrase",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCmd,
	}
	cmd.Flags().StringVar(&inspectKeyword, "keyword", "", "use this keyword instead of locating one")
	cmd.Flags().StringVar(&inspectAnswer, "answer", "", "grade this answer against the keyword")
	cmd.Flags().StringVar(&inspectGap, "gap", gapfill.DefaultPlaceholder, "gap marker")
	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	phrase := args[0]
	out := cmd.OutOrStdout()

	kw := inspectKeyword
	if kw == "" {
		var ok bool
		kw, ok = keyword.Locate(phrase)
		if !ok {
			return writeOut(out, "keyword: none (only stop words)\n")
		}
	}
	if err := writeOut(out, "keyword: %s\n", kw); err != nil {
		return err
	}

	res := gapfill.New(inspectGap).Synthesize(phrase, kw)
	if res.OK {
		if err := writeOut(out, "gap:     %s (%s)\n", res.Text, res.Tier); err != nil {
			return err
		}
	} else if err := writeOut(out, "gap:     none\n"); err != nil {
		return err
	}

	if inspectAnswer != "" {
		v := answer.Evaluate(inspectAnswer, kw)
		verdict := "rejected"
		if v.Accepted {
			verdict = "accepted"
		}
		if err := writeOut(out, "answer:  %s (%s)\n", verdict, v.Tier); err != nil {
			return err
		}
	}
	return nil
}
