package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sgyexport/pkg/auth"
	"sgyexport/pkg/schoology"
)

// loginCmd runs the authorization flow without exporting anything
var loginCmd = &cobra.Command{
	Use:   "login <credentials-file>",
	Short: "Authorize with Schoology and store the user token",
	Long: `Run the one-time browser authorization flow and store the resulting
user token in the system keychain, so that later exports start without
any interaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runLogin(args[0])
		return nil
	},
}

// logoutCmd removes stored tokens
var logoutCmd = &cobra.Command{
	Use:   "logout <credentials-file>",
	Short: "Remove the stored user token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runLogout(args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(credentialsPath string) {
	cfg, log := setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileCreds, err := auth.LoadCredentialsFile(credentialsPath)
	if err != nil {
		log.WithError(err).Error("Failed to load credentials file")
		os.Exit(1)
	}
	if fileCreds.Domain != "" {
		cfg.Schoology.Domain = fileCreds.Domain
	}

	client := schoology.NewClient(fileCreds.Credentials(), cfg, log)
	token, secret, err := auth.Authorize(ctx, client, cfg.Schoology.Domain, os.Stdin, log)
	if err != nil {
		log.WithError(err).Error("Authorization failed")
		os.Exit(1)
	}

	tokens, err := auth.NewManager("")
	if err != nil {
		log.WithError(err).Error("Token storage unavailable")
		os.Exit(1)
	}
	if err := tokens.Store(fileCreds.ConsumerKey, auth.TokenPair{Token: token, Secret: secret}); err != nil {
		log.WithError(err).Error("Failed to store user token")
		os.Exit(1)
	}

	fmt.Println("Authorized. Token stored for later runs.")
}

func runLogout(credentialsPath string) {
	_, log := setup()

	fileCreds, err := auth.LoadCredentialsFile(credentialsPath)
	if err != nil {
		log.WithError(err).Error("Failed to load credentials file")
		os.Exit(1)
	}

	tokens, err := auth.NewManager("")
	if err != nil {
		log.WithError(err).Error("Token storage unavailable")
		os.Exit(1)
	}
	if err := tokens.Delete(fileCreds.ConsumerKey); err != nil {
		log.WithError(err).Error("Failed to remove stored token")
		os.Exit(1)
	}

	fmt.Println("Stored token removed.")
}
