package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/tariff-engine/factory"
)

// =============================================================================
// SHIFTS
// =============================================================================

func newShiftsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "shifts", Short: "Manage shifts"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List shifts by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shifts, err := a.svc.Config.ListShifts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tRATE\tWEEKDAYS")
			for _, s := range shifts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Label(), s.Rate.String(), formatWeekdays(s.Weekdays))
			}
			return tw.Flush()
		},
	})

	var (
		start, end, rate, weekdays string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}
			days, err := parseWeekdayList(weekdays)
			if err != nil {
				return err
			}
			shift, err := factory.ParseShift(factory.ShiftJSON{StartTime: start, EndTime: end, Rate: r, Weekdays: days})
			if err != nil {
				return err
			}
			id, err := a.svc.Config.AddShift(cmd.Context(), shift)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added shift #%d %s\n", id, shift.Label())
			return nil
		},
	}
	add.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	add.Flags().StringVar(&end, "end", "", "End time HH:MM (at or before start crosses midnight)")
	add.Flags().StringVar(&rate, "rate", "", "Hourly rate")
	add.Flags().StringVar(&weekdays, "weekdays", "", "Comma-separated weekdays 0-6, Sunday=0 (empty = every day)")
	_ = add.MarkFlagRequired("start")
	_ = add.MarkFlagRequired("end")
	_ = add.MarkFlagRequired("rate")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Delete a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return a.svc.Config.DeleteShift(cmd.Context(), id)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Install the default shifts if none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.svc.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %d shifts\n", n)
			return nil
		},
	})
	return cmd
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func newHolidaysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "holidays", Short: "Manage holidays"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List holidays by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			holidays, err := a.svc.Config.ListHolidays(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tNAME\tRATE")
			for _, h := range holidays {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", h.ID, h.Date, h.Name, h.Rate.String())
			}
			return tw.Flush()
		},
	})

	var date, name, rate string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a holiday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}
			holiday, err := factory.ParseHoliday(factory.HolidayJSON{Date: date, Name: name, Rate: r})
			if err != nil {
				return err
			}
			id, err := a.svc.Config.AddHoliday(cmd.Context(), holiday)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added holiday #%d %s\n", id, holiday.Date)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD")
	add.Flags().StringVar(&name, "name", "", "Holiday name")
	add.Flags().StringVar(&rate, "rate", "", "Hourly rate for the whole day")
	_ = add.MarkFlagRequired("date")
	_ = add.MarkFlagRequired("rate")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Delete a holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return a.svc.Config.DeleteHoliday(cmd.Context(), id)
		},
	})
	return cmd
}

// =============================================================================
// HISTORY
// =============================================================================

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "history", Short: "Archived calculations"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List archived calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.svc.History.ListHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSAVED\tDATE\tINTERVAL\tHOURS\tEARNINGS")
			for _, rec := range records {
				req := rec.Result.Request
				interval := req.StartTime + " - " + req.EndTime
				if req.Overnight {
					interval += " (+1)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					rec.ID,
					rec.SavedAt.Local().Format("2006-01-02 15:04"),
					req.WorkDate,
					interval,
					rec.Result.TotalHours.StringFixed(2),
					rec.Result.TotalEarnings.StringFixed(2),
				)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum records (0 = all)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all archived calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.History.ClearHistory(cmd.Context())
		},
	})
	return cmd
}

// =============================================================================
// CONFIG DOCUMENT
// =============================================================================

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Import or export shifts and holidays"}

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write the configuration as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(factory.ToJSON(snap))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Replace all shifts and holidays with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			snap, err := factory.ParseConfig(data)
			if err != nil {
				return err
			}
			if err := a.svc.ReplaceConfig(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %d shifts, %d holidays\n", len(snap.Shifts), len(snap.Holidays))
			return nil
		},
	})
	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWeekdayList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

func formatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "every day"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}
