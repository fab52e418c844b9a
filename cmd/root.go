package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/crossover/config"
	"github.com/s0up4200/crossover/filter"
	"github.com/s0up4200/crossover/httpclient"
	"github.com/s0up4200/crossover/rickmorty"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	api           *rickmorty.Client
	filterManager *filter.Manager

	appVersion   = "dev"
	appBuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crossover",
	Short: "Browse Rick and Morty characters and compare their episodes",
	Long: `crossover browses the characters of the Rick and Morty API page by page,
and compares two characters to find the episodes they share and the
episodes only one of them appears in.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion sets the version information reported by the version command
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.config/crossover/config.yaml)")
}

// initializeApp loads configuration and wires the upstream clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	httpClient, err := newHTTPClient(cfg.API, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	api = rickmorty.NewClient(httpClient, logger)

	filterManager = filter.NewManager()
	if err := filterManager.RegisterPresets(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Int("items_per_page", cfg.Pagination.ItemsPerPage).
		Int("presets", len(cfg.Filter.Presets)).
		Msg("Initialized")

	return nil
}

func newHTTPClient(apiCfg config.APIConfig, logger zerolog.Logger) (*httpclient.Client, error) {
	userAgent := apiCfg.UserAgent
	if userAgent == "" {
		userAgent = "crossover/" + appVersion
	}

	opts := []httpclient.Option{
		httpclient.WithTimeout(apiCfg.Timeout),
		httpclient.WithMaxRetries(apiCfg.Retries),
		httpclient.WithRetryDelay(apiCfg.RetryDelay),
		httpclient.WithUserAgent(userAgent),
		httpclient.WithRateLimit(apiCfg.RateLimit, apiCfg.RateBurst),
	}

	if apiCfg.Breaker.Enabled {
		opts = append(opts, httpclient.WithCircuitBreaker(httpclient.BreakerSettings{
			Name:             "rickandmortyapi",
			FailureThreshold: apiCfg.Breaker.FailureThreshold,
			OpenTimeout:      apiCfg.Breaker.OpenTimeout,
		}))
	}

	return httpclient.New(apiCfg.BaseURL, logger, opts...)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
