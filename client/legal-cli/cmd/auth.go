package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var password string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		pw, err := passwordOrPrompt(cmd)
		if err != nil {
			return err
		}
		t, err := api.Login(args[0], pw)
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s logged in as %s (%s)\n", green("✓"), t.Username, t.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create a citizen account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		pw, err := passwordOrPrompt(cmd)
		if err != nil {
			return err
		}
		if err := api.Register(args[0], args[1], pw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s account %s created, you can log in now\n", color.GreenString("✓"), args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

func passwordOrPrompt(cmd *cobra.Command) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(pw)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}
