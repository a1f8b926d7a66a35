package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/parser"
	"github.com/spf13/cobra"
)

var (
	uploadTitle  string
	uploadAsText bool
)

var uploadCmd = &cobra.Command{
	Use:     "upload <file>",
	Aliases: []string{"add"},
	Short:   "Upload a document",
	Long: `Upload a document file. With --as-text the file's text is extracted locally
(txt, md, docx) and sent as document content instead of the raw file. The
title defaults to the one found in the file, then to the file name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var doc *api.Document
		if uploadAsText {
			ex, err := parser.ParseFile(file)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(uploadTitle)
			if title == "" {
				title = ex.Title
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Extracted ~%d tokens from %s\n", parser.EstimateTokens(ex.Text), filepath.Base(file))
			doc, err = a.ws.CreateFromText(cmd.Context(), title, ex.Text)
			if err != nil {
				return err
			}
		} else {
			doc, err = a.ws.Upload(cmd.Context(), file, uploadTitle)
			if err != nil {
				return err
			}
		}
		printSuccess(cmd.OutOrStdout(), "Document uploaded: %s (%s)", doc.Title, doc.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "document title (defaults to the file name)")
	uploadCmd.Flags().BoolVar(&uploadAsText, "as-text", false, "extract text locally and upload it as content")
}
