package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repstress/internal/banner"
	"repstress/internal/cli"
	"repstress/internal/dummy"
	"repstress/internal/runner"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "repstress",
	Short: "repstress - stress testing for the domain reputation API",
	Long: `
repstress keeps a fixed number of concurrent lookups running against the
reputation API for a rotating list of domains until the timeout elapses or
the run is interrupted, then prints latency and error statistics and saves
every result to CSV.

The API token is read from the API_TOKEN environment variable (a .env file
in the working directory is honoured).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFromConfig()
		if err := opts.Config.Validate(); err != nil {
			return err
		}
		// Past validation, failures are not usage problems.
		cmd.SilenceUsage = true

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return cli.Start(ctx, opts)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, runner.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.repstress.yaml)")
	rootCmd.PersistentFlags().String("results-dir", "results", "Directory for CSV results, logs and run history")

	f := rootCmd.Flags()
	f.IntP("concurrent-requests", "c", runner.DefaultConcurrency, "Number of requests kept in flight")
	f.IntP("domains", "n", runner.DefaultDomainCount, fmt.Sprintf("Number of domains to cycle through (max %d)", runner.MaxDomains))
	f.IntP("timeout", "t", runner.DefaultTimeoutSec, "Test duration in seconds")
	f.String("results-file", "stress_test_results", "Results CSV filename prefix")
	f.String("domains-file", "./assets/domains.yaml", "YAML file with a 'domains' list")
	f.String("log-level", "info", "Log file level (debug, info, warn, error)")
	f.String("api-url", runner.DefaultAPIURL, "Reputation API base URL; the domain is appended as a path segment")
	f.Duration("grace", runner.DefaultGrace, "How long in-flight requests may finish after the timeout")
	f.Duration("request-timeout", 0, "Per-request timeout (0 means none)")
	f.Bool("no-history", false, "Do not record this run in the history database")

	viper.BindPFlags(f)
	viper.BindPFlag("results-dir", rootCmd.PersistentFlags().Lookup("results-dir"))
	viper.BindEnv("api-token", "API_TOKEN")
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".repstress")
		}
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func optionsFromConfig() cli.Options {
	return cli.Options{
		Config: runner.Config{
			APIURL:         viper.GetString("api-url"),
			Token:          viper.GetString("api-token"),
			Concurrency:    viper.GetInt("concurrent-requests"),
			DomainCount:    viper.GetInt("domains"),
			TimeoutSec:     viper.GetInt("timeout"),
			Grace:          viper.GetDuration("grace"),
			RequestTimeout: viper.GetDuration("request-timeout"),
		},
		DomainsFile: viper.GetString("domains-file"),
		ResultsDir:  viper.GetString("results-dir"),
		ResultsFile: viper.GetString("results-file"),
		LogLevel:    viper.GetString("log-level"),
		NoHistory:   viper.GetBool("no-history"),
	}
}

// --- Dummy Subcommand ---
var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a mock reputation API for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		token, _ := cmd.Flags().GetString("token")
		srv := dummy.Start(dummy.ServerConfig{Port: port, Token: token})

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run the mock API on")
	dummyCmd.Flags().String("token", "", "Require this exact Authorization header value")
}
