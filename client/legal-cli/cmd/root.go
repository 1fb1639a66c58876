package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	tokenPath string
)

var rootCmd = &cobra.Command{
	Use:   "legal-cli",
	Short: "A CLI client for the civil-rights legal assistant",
	Long: `A command-line interface for asking the legal assistant questions,
browsing chat history and, for administrators, uploading laws.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
		os.Exit(1)
	}
}

func init() {
	defaultServer := os.Getenv("LEGAL_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	home, _ := os.UserHomeDir()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "base URL of the legal assistant API")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", filepath.Join(home, ".legal-cli", "token"), "where the login tokens are kept")
}

func newAPI() (*apiClient, error) {
	toks, err := loadTokens(tokenPath)
	if err != nil {
		return nil, err
	}
	return newAPIClient(serverURL, toks, func(t tokens) error { return saveTokens(tokenPath, t) }), nil
}
