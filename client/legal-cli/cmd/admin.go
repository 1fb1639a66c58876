package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var uploadTitle string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a law (PDF or text) and index it (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := uploadTitle
		if title == "" {
			base := filepath.Base(args[0])
			title = strings.TrimSuffix(base, filepath.Ext(base))
		}
		api, err := newAPI()
		if err != nil {
			return err
		}
		doc, err := api.Upload(args[0], title)
		if err != nil {
			return err
		}
		status := color.GreenString(doc.IndexStatus)
		if doc.IndexStatus != "indexed" {
			status = color.YellowString(doc.IndexStatus)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "document #%d %q: %s, %d segments\n", doc.ID, doc.Title, status, doc.SegmentsIndexed)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "document title (defaults to the file name)")
	rootCmd.AddCommand(uploadCmd)
}
