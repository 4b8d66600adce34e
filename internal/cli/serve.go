package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"courtsim/internal/config"
	"courtsim/internal/options"
	"courtsim/internal/server"
	"courtsim/internal/store"
)

var (
	servePort        int
	serveDBPath      string
	serveOptionsURL  string
	serveOptionsFile string
	serveVerbose     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the courtsim API server",
	Long: `Runs the HTTP API serving scenario options, progress records and
published outputs. Play clients point at it with --server-url.

Scenario options come from, in order of precedence: --options-file (a
YAML catalog, reloaded on change), --options-url (another courtsim
server), or the builtin catalog.

Example:
  courtsim serve
  courtsim serve --port 9000 --options-file scenarios.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "path to the SQLite database (default from config)")
	serveCmd.Flags().StringVar(&serveOptionsURL, "options-url", "", "upstream courtsim server to pull scenario options from")
	serveCmd.Flags().StringVar(&serveOptionsFile, "options-file", "", "YAML scenario catalog, watched for changes")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}

	port := servePort
	if !cmd.Flags().Changed("port") {
		port = cfg.Server.Port
	}
	dbPath := serveDBPath
	if dbPath == "" {
		dbPath = cfg.Server.DBPath
	}
	optionsURL := serveOptionsURL
	if optionsURL == "" {
		optionsURL = cfg.Server.OptionsURL
	}
	optionsFile := serveOptionsFile
	if optionsFile == "" {
		optionsFile = cfg.Server.OptionsFile
	}

	logger, err := newConsoleLogger(serveVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := buildProvider(optionsFile, optionsURL, logger)
	if err != nil {
		return err
	}
	if closer, ok := provider.(*options.FileProvider); ok {
		defer closer.Close()
	}

	srv, err := server.NewServer(&server.Config{
		Port:    port,
		Store:   st,
		Options: provider,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Stop()
	})
	return g.Wait()
}

// buildProvider picks the scenario source: a watched file beats an upstream
// server, which beats the builtin catalog.
func buildProvider(file, url string, logger *zap.Logger) (options.Provider, error) {
	switch {
	case file != "":
		return options.NewFileProvider(file, logger)
	case url != "":
		return options.NewRemoteProvider(url, nil, logger), nil
	default:
		return options.Builtin(), nil
	}
}
