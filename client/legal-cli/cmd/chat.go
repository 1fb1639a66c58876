package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List your folders and their chats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		folders, err := api.Folders()
		if err != nil {
			return err
		}
		if len(folders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no folders yet, create one with `legal-cli folder <name>`")
			return nil
		}
		bold := color.New(color.Bold).SprintFunc()
		for _, f := range folders {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold(fmt.Sprintf("[%d]", f.ID)), f.Name)
			for _, c := range f.Chats {
				fmt.Fprintf(cmd.OutOrStdout(), "    #%d %s (%d messages)\n", c.ID, c.Name, c.MessageCount)
			}
		}
		return nil
	},
}

var folderCmd = &cobra.Command{
	Use:   "folder <name>",
	Short: "Create a folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		f, err := api.CreateFolder(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created folder [%d] %s\n", f.ID, f.Name)
		return nil
	},
}

var newChatCmd = &cobra.Command{
	Use:   "chat <folder-id> <name>",
	Short: "Start a new chat inside a folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, err := parseID(args[0])
		if err != nil {
			return err
		}
		api, err := newAPI()
		if err != nil {
			return err
		}
		c, err := api.CreateChat(folderID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created chat #%d %s\n", c.ID, c.Name)
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <chat-id> <question>",
	Short: "Ask the legal assistant a question",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID(args[0])
		if err != nil {
			return err
		}
		api, err := newAPI()
		if err != nil {
			return err
		}
		answer, err := api.Ask(chatID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		label := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", label("Asistent:"), answer)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <chat-id>",
	Short: "Show the messages of a chat, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID(args[0])
		if err != nil {
			return err
		}
		api, err := newAPI()
		if err != nil {
			return err
		}
		msgs, err := api.History(chatID)
		if err != nil {
			return err
		}
		you := color.New(color.FgCyan, color.Bold).SprintFunc()
		bot := color.New(color.FgGreen, color.Bold).SprintFunc()
		for _, m := range msgs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s %s\n%s %s\n\n",
				color.HiBlackString(m.Timestamp.Local().Format("2006-01-02 15:04")),
				you("Vi:"), m.Question,
				bot("Asistent:"), m.Answer)
		}
		return nil
	},
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func init() {
	rootCmd.AddCommand(foldersCmd, folderCmd, newChatCmd, askCmd, historyCmd)
}
