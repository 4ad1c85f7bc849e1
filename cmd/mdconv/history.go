package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mdconv/internal/config"
	convSvc "mdconv/internal/domain/services/conversion"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historySkip  int
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVar(&historySkip, "skip", 0, "Number of records to skip")
	historyCmd.Flags().IntVar(&historyLimit, "limit", config.DefaultHistoryLimit, "Maximum number of records to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := a.service.ListHistory(cmd.Context(), &convSvc.HistoryRequest{
		Skip:  historySkip,
		Limit: historyLimit,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tSTATUS\tSIZE\tSECONDS\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			s.ID,
			s.Filename,
			s.Status,
			s.FileSize,
			strconv.FormatFloat(s.ConversionTime, 'f', 3, 64),
			s.CreatedAt.Local().Format(time.DateTime),
		)
	}
	return tw.Flush()
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one recorded conversion",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full record as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversion id %q", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.service.GetRecord(cmd.Context(), id)
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), record.ConvertedContent)
	return err
}
