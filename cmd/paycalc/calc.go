package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/tariff-engine/tariff"
)

func newCalcCmd(a *app) *cobra.Command {
	var (
		dateStr   string
		start     string
		end       string
		overnight bool
		save      bool
		key       string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price a work interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := tariff.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			req := tariff.WorkRequest{WorkDate: date, StartTime: start, EndTime: end, Overnight: overnight}

			result, err := a.svc.Calculate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if save {
				rec, err := a.svc.Save(cmd.Context(), key, result)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "saved as #%d (%s)\n", rec.ID, rec.Key)
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(a, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Work date YYYY-MM-DD")
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "End time HH:MM")
	cmd.Flags().BoolVar(&overnight, "overnight", false, "End time falls on the next day")
	cmd.Flags().BoolVar(&save, "save", false, "Archive the result in history")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key for --save (random if empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func printResult(a *app, r *tariff.EarningsResult) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tFROM\tTO\tHOURS\tRATE\tEARNINGS")
	for _, seg := range r.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			seg.Label,
			tariff.FormatMinutes(seg.Start),
			tariff.FormatMinutes(seg.End),
			seg.HoursRounded().StringFixed(2),
			seg.Rate.String(),
			seg.Earnings.StringFixed(2),
		)
	}
	tw.Flush()

	fmt.Fprintf(a.out, "\nTotal hours:    %s\n", r.TotalHours.StringFixed(2))
	if r.UncoveredMinutes > 0 {
		fmt.Fprintf(a.out, "Uncovered:      %d min (%d of %d covered)\n",
			r.UncoveredMinutes, r.CoveredMinutes(), r.TotalMinutes)
	}
	fmt.Fprintf(a.out, "Total earnings: %s\n", r.TotalEarnings.StringFixed(2))
}
