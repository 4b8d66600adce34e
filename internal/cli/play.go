package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courtsim/internal/catalog"
	"courtsim/internal/coding"
	"courtsim/internal/config"
	"courtsim/internal/game"
	"courtsim/internal/handoff"
	"courtsim/internal/options"
	"courtsim/internal/progress"
	"courtsim/internal/tui"
)

var (
	playScenario  string
	playServerURL string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a courtroom run in the terminal",
	Long: `Starts the simulation: pick a scenario, then race the clock. Alerts
surface while you work through the coding tasks; respond with [F]ix,
[S]nooze or [I]gnore. Letting a critical alert expire ends the run in
a verdict.

With --server-url, scenario options come from a courtsim server and the
run outcome is recorded there; without it everything runs offline.

Example:
  courtsim play
  courtsim play --scenario opt-sec
  courtsim play --server-url http://localhost:8787`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playScenario, "scenario", "", "preselect a scenario by id")
	playCmd.Flags().StringVar(&playServerURL, "server-url", "", "courtsim server for options and progress records")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}

	serverURL := playServerURL
	if serverURL == "" {
		serverURL = cfg.Game.ServerURL
	}
	scenarioID := playScenario
	if scenarioID == "" {
		scenarioID = cfg.Game.Scenario
	}

	logger, err := newFileLogger(cwd)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	provider := options.Provider(options.Builtin())
	var progressClient progress.Creator
	var outputClient progress.OutputCreator
	if serverURL != "" {
		provider = options.NewRemoteProvider(serverURL, nil, logger)
		client := progress.NewHTTPClient(serverURL, logger)
		progressClient = client
		outputClient = client
	}

	payload := provider.Fetch(ctx)
	scenarios := payload.Options
	if scenarioID != "" && options.ByID(ctx, provider, scenarioID) == nil {
		return fmt.Errorf("unknown scenario %q", scenarioID)
	}

	mailbox := handoff.NewMemory()
	notifier := tui.NewNotifier(os.Stdout)

	// The app and panel are assigned below, before the engine starts; the
	// closures only run once the event loop is live.
	var app *tui.App
	var panel *coding.Panel

	engine := game.NewEngine(game.Options{
		RunDuration:   cfg.Game.RunDuration(),
		AlertCadence:  cfg.Game.AlertCadence(),
		CriticalGrace: cfg.Game.CriticalGrace(),
		NavigateDelay: cfg.Game.NavigateDelay(),
		Navigator:     game.NavigatorFunc(func(v game.Verdict) { app.Navigate(v) }),
		Handoff:       mailbox,
		Progress:      progressClient,
		Cue:           notifier,
		Output:        outputClient,
		OutputHTML:    func() string { return panel.HTML() },
		OnUpdate:      func() { app.Nudge() },
		Logger:        logger,
	})
	defer engine.Close()

	panel = coding.NewPanel(coding.Options{
		StageDuration: cfg.Game.StageDuration(),
		VerdictFunc: func(category catalog.Category, verdict string) {
			engine.TriggerVerdict(game.Verdict{Category: category, Text: verdict})
		},
		WinFunc: func() {
			engine.Win()
			app.ShowWin()
		},
		Logger: logger,
	})
	defer panel.Stop()

	app = tui.NewApp(tui.AppConfig{
		Out:             os.Stdout,
		Engine:          engine,
		Panel:           panel,
		Handoff:         mailbox,
		Scenarios:       scenarios,
		InitialScenario: scenarioID,
		Logger:          logger,
	})

	logger.Info("play session starting",
		zap.String("serverURL", serverURL),
		zap.String("source", payload.Source),
		zap.Int("scenarios", len(scenarios)))

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
