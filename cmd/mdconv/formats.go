package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mdconv/internal/formats"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported file extensions",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	listing := formats.Default().List()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, strings.Join(listing.Formats, " "))

	categories := make([]string, 0, len(listing.Dependencies))
	for name := range listing.Dependencies {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, name := range categories {
		category := listing.Dependencies[name]
		fmt.Fprintf(out, "\n%s (%s)\n", name, strings.Join(category.Formats, " "))
		for _, dep := range category.Dependencies {
			fmt.Fprintf(out, "  - %s\n", dep)
		}
	}

	if listing.Message != "" {
		fmt.Fprintf(out, "\n%s\n", listing.Message)
	}
	return nil
}
