package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sgyexport/pkg/auth"
	"sgyexport/pkg/config"
	"sgyexport/pkg/export"
	"sgyexport/pkg/logger"
	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

var (
	// Export command flags
	outputDir   string
	rateLimit   int
	maxRetries  int
	reauthorize bool
	noStore     bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <credentials-file>",
	Short: "Export all personal data to a timestamped directory",
	Long: `Export all personal Schoology data into a fresh export_<timestamp>
directory under the output directory.

The credentials file holds three lines: the Schoology domain of your school
(for example app.schoology.com), your consumer key, and your consumer secret.
Two more lines with an already authorized user token and secret may follow;
without them the stored tokens from a previous run are used, or the
interactive authorization flow is started.`,
	Example: `  # Export using default settings
  sgyexport export ~/.schoology-credentials

  # Export to a specific directory with a lower request rate
  sgyexport export ~/.schoology-credentials --output ./exports --rate-limit 60

  # Discard stored tokens and authorize again
  sgyexport export ~/.schoology-credentials --reauthorize`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runExport(args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for exports (default: current directory)")
	exportCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute")
	exportCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum number of retry attempts")
	exportCmd.Flags().BoolVar(&reauthorize, "reauthorize", false, "discard stored tokens and run the authorization flow again")
	exportCmd.Flags().BoolVar(&noStore, "no-store", false, "do not persist tokens obtained during this run")
}

func runExport(credentialsPath string) {
	cfg, log := setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := authorizedClient(ctx, cfg, log, credentialsPath)
	if err != nil {
		log.WithError(err).Error("Authorization failed")
		os.Exit(1)
	}

	run, err := storage.NewRun(cfg.Output.BaseDirectory)
	if err != nil {
		log.WithError(err).Error("Failed to create export directory")
		os.Exit(1)
	}
	log.WithField("directory", run.Root()).Info("Export directory created")

	start := time.Now()
	exporter := export.New(client, run, cfg, log)
	if err := exporter.Run(ctx); err != nil {
		log.WithError(err).Error("Export failed")
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"directory": run.Root(),
		"duration":  time.Since(start).String(),
	}).Info("Export finished")
	fmt.Printf("Exported to %s\n", run.Root())
}

// setup loads configuration and initializes the global logger.
func setup() (*config.Config, logger.Logger) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if maxRetries > 0 {
		flags["max-retries"] = maxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Schoology Exporter starting")

	return cfg, log
}

// authorizedClient builds an API client signing with user tokens, running the
// interactive authorization flow when no tokens are available.
func authorizedClient(ctx context.Context, cfg *config.Config, log logger.Logger, credentialsPath string) (*schoology.Client, error) {
	fileCreds, err := auth.LoadCredentialsFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	if fileCreds.Domain != "" {
		cfg.Schoology.Domain = fileCreds.Domain
	}

	client := schoology.NewClient(fileCreds.Credentials(), cfg, log)
	if fileCreds.HasUserToken() {
		log.Info("Using user token from credentials file")
		return client, nil
	}

	tokens, err := auth.NewManager("")
	if err != nil {
		log.WithError(err).Warn("Token storage unavailable")
		tokens = nil
	}

	if tokens != nil && reauthorize {
		if err := tokens.Delete(fileCreds.ConsumerKey); err != nil {
			log.WithError(err).Warn("Failed to discard stored tokens")
		}
	}

	if tokens != nil && !reauthorize {
		if pair, err := tokens.Retrieve(fileCreds.ConsumerKey); err == nil {
			log.Info("Using stored user token")
			client.SetCredentials(client.Credentials().WithUserToken(pair.Token, pair.Secret))
			return client, nil
		}
	}

	token, secret, err := auth.Authorize(ctx, client, cfg.Schoology.Domain, os.Stdin, log)
	if err != nil {
		return nil, err
	}

	if tokens != nil && !noStore {
		if err := tokens.Store(fileCreds.ConsumerKey, auth.TokenPair{Token: token, Secret: secret}); err != nil {
			log.WithError(err).Warn("Failed to store user token")
		} else {
			log.Info("User token stored for later runs")
		}
	}

	return client, nil
}

// Make export the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// A bare path argument means export
			return exportCmd.RunE(exportCmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
