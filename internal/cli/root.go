package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/aliases/internal/app"
	"github.com/lu-zhengda/aliases/internal/config"
	"github.com/lu-zhengda/aliases/internal/logging"
	"github.com/lu-zhengda/aliases/internal/metrics"
	"github.com/lu-zhengda/aliases/internal/provider/mojang"
	"github.com/lu-zhengda/aliases/internal/store/sqlite"
	"github.com/lu-zhengda/aliases/internal/tui"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	// verbose logs at debug level on stderr for one-shot commands.
	verbose bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "aliases",
		Short:   "Player name history lookup",
		Long:    "Look up the previous usernames of a Minecraft account, from the terminal, a lobby or HTTP.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(os.Stdout)
				case "zsh":
					return cmd.Root().GenZshCompletion(os.Stdout)
				case "fish":
					return cmd.Root().GenFishCompletion(os.Stdout, true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}
			return runConsole()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("aliases %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	root.AddCommand(newLookupCmd())
	root.AddCommand(newConsoleCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPermCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "aliases.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command. Long-running commands use the
// configured level; one-shot commands stay quiet unless --verbose is set.
func newLogger(cfg *config.Config, w io.Writer, longRunning bool) (*log.Logger, error) {
	level := cfg.Log.Level
	switch {
	case verbose:
		level = "debug"
	case !longRunning:
		level = "warn"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Output: w})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newLookupService wires the Mojang client into a LookupService.
func newLookupService(cfg *config.Config, logger log.FieldLogger, reg prometheus.Registerer) (*app.LookupService, *metrics.Metrics, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}
	p := mojang.New(nil,
		mojang.WithProfilesURL(cfg.API.ProfilesURL),
		mojang.WithHistoryURL(cfg.API.HistoryURL),
		mojang.WithTimeout(timeout),
	)
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}
	return app.NewLookupService(p, logger, m), m, nil
}

func runConsole() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The console owns the terminal, so logs go to a file.
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "console.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := newLogger(cfg, logFile, true)
	if err != nil {
		return err
	}
	svc, _, err := newLookupService(cfg, logger, nil)
	if err != nil {
		return err
	}
	return tui.Run(svc, cfg.ReportOptions())
}

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive lookup console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole()
		},
	}
}
