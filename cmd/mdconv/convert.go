package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	convSvc "mdconv/internal/domain/services/conversion"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a file or zip archive to Markdown",
	Long:  "Converts the file and records the conversion like an upload would. Prints the Markdown, or the record and per-file outcomes with --json.",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var convertJSON bool

func init() {
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "Print the record and per-file outcomes as JSON")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Convert(cmd.Context(), &convSvc.ConversionRequest{
		Filename: filepath.Base(path),
		Content:  content,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if convertJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if _, err := fmt.Fprintln(out, result.Record.ConvertedContent); err != nil {
		return err
	}
	for _, f := range result.Result.Files {
		if !f.OK() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", f.Filename, f.Error)
		}
	}
	return nil
}
