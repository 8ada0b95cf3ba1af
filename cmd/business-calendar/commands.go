package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/httpapi"
	"github.com/username/business-calendar/internal/slots"
	"github.com/username/business-calendar/pkg/dateutil"
)

func holidaysCmd() *cobra.Command {
	var year int
	var lang string

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List public holidays of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			german, _ := initializeCalendar(cfg)

			if year == 0 {
				year = time.Now().Year()
			}
			holidays := german.Holidays(year)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, httpapi.HolidaysResponse{
					Year:     year,
					State:    german.Jurisdiction().State,
					Holidays: holidays,
				})
			}

			fmt.Fprintf(out, "Holidays %d (%s)\n", year, german.Jurisdiction().StateName())
			for _, h := range holidays {
				fmt.Fprintf(out, "  %s  %-8s  %s\n", h.Date, h.Scope, h.Name(lang))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year (default: current year)")
	cmd.Flags().StringVar(&lang, "lang", "de", "Holiday name language (de or en)")

	return cmd
}

func dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day DATE",
		Short: "Classify a date as business day, weekend or holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cal := initializeCalendar(cfg)

			day, err := cal.GetDayInfo(date)
			if err != nil {
				return fmt.Errorf("failed to classify %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, httpapi.NewDayResponse(day))
			}

			fmt.Fprintf(out, "%s %s: %s", dateutil.FormatDate(day.Date), day.Date.Weekday(), day.Type)
			if day.Note != "" {
				fmt.Fprintf(out, " (%s)", day.Note)
			}
			fmt.Fprintf(out, ", business day: %t, working minutes: %d\n", day.IsWorkday, day.WorkingMinutes)
			return nil
		},
	}
}

func nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next [DATE]",
		Short: "Print the next business day after DATE (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := dateutil.StartOfDay(time.Now())
			if len(args) == 1 {
				var err error
				if date, err = dateutil.ParseDate(args[0]); err != nil {
					return err
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cal := initializeCalendar(cfg)

			next, err := calendar.NextBusinessDay(cal, date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, httpapi.NextBusinessDayResponse{
					Date:            dateutil.FormatDate(date),
					NextBusinessDay: dateutil.FormatDate(next),
				})
			}

			fmt.Fprintf(out, "%s %s\n", dateutil.FormatDate(next), next.Weekday())
			return nil
		},
	}
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month YEAR MONTH",
		Short: "Show every day of a month with working minutes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := strconv.Atoi(args[1])
			if err != nil || month < 1 || month > 12 {
				return fmt.Errorf("invalid month %q", args[1])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cal := initializeCalendar(cfg)

			monthInfo, err := cal.GetMonthInfo(year, time.Month(month))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				days := make([]httpapi.DayResponse, len(monthInfo.Days))
				for i := range monthInfo.Days {
					days[i] = httpapi.NewDayResponse(&monthInfo.Days[i])
				}
				return printJSON(out, httpapi.MonthResponse{
					Year:           year,
					Month:          month,
					WorkDays:       monthInfo.WorkDays,
					Weekends:       monthInfo.Weekends,
					Holidays:       monthInfo.Holidays,
					WorkingMinutes: monthInfo.WorkingMinutes,
					Days:           days,
				})
			}

			fmt.Fprintf(out, "%s %d\n", time.Month(month), year)
			fmt.Fprintln(out, "  Date        | Day | Type      | Minutes | Note")
			fmt.Fprintln(out, "--------------+-----+-----------+---------+----------------")
			for _, day := range monthInfo.Days {
				fmt.Fprintf(out, "  %s  | %s | %-9s | %7d | %s\n",
					dateutil.FormatDate(day.Date),
					day.Date.Weekday().String()[:3],
					day.Type,
					day.WorkingMinutes,
					day.Note)
			}
			fmt.Fprintf(out, "\n  Work days: %d, weekends: %d, holidays/closed: %d, working hours: %.1fh\n",
				monthInfo.WorkDays, monthInfo.Weekends, monthInfo.Holidays, float64(monthInfo.WorkingMinutes)/60)
			return nil
		},
	}
}

func hoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hours",
		Short: "Show opening hours and Mittagspause",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			policy := cfg.Hours.Policy()

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, policy)
			}

			fmt.Fprintf(out, "Open:         %s - %s\n", policy.OpenTime, policy.CloseTime)
			fmt.Fprintf(out, "Mittagspause: %s - %s (check: %s)\n", policy.LunchStart, policy.LunchEnd, policy.LunchCheck)
			fmt.Fprintf(out, "Working time: %d minutes\n", policy.WorkingMinutes())
			return nil
		},
	}
}

func lunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lunch HH:MM",
		Short: "Check whether a time of day falls into the Mittagspause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			policy := cfg.Hours.Policy()

			lunch, err := policy.IsLunchBreak(args[0])
			if err != nil {
				return err
			}
			open, err := policy.IsOpen(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, httpapi.LunchBreakResponse{Time: args[0], LunchBreak: lunch, Open: open})
			}

			fmt.Fprintf(out, "%s lunch break: %t, open: %t\n", args[0], lunch, open)
			return nil
		},
	}
}

func slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots DATE",
		Short: "List appointment slots of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cal := initializeCalendar(cfg)

			generator, err := slots.NewGenerator(cal, cfg.Hours.Policy(), cfg.Slots.DurationMinutes, cfg.Slots.MinNoticeMinutes)
			if err != nil {
				return err
			}
			generator.SetLocation(cfg.Calendar.Location())

			offered, err := generator.Offer(date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, httpapi.SlotsResponse{Date: dateutil.FormatDate(date), Slots: offered})
			}

			if len(offered) == 0 {
				fmt.Fprintf(out, "No slots on %s\n", dateutil.FormatDate(date))
				return nil
			}
			for _, s := range offered {
				status := "free"
				if !s.Available {
					status = s.Reason
				}
				fmt.Fprintf(out, "  %s  %3d min  %s\n", s.Start, s.DurationMinutes, status)
			}
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare computed holidays with feiertage-api.de",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			german, _ := initializeCalendar(cfg)

			if year == 0 {
				year = time.Now().Year()
			}

			remote := calendar.NewRemoteCalendar(
				cfg.Remote.URL,
				german.Jurisdiction(),
				german.Policy(),
				cfg.Remote.GetCacheTTL(),
				cfg.Remote.GetTimeout(),
				logger,
			)

			published, err := remote.Holidays(cmd.Context(), year)
			if err != nil {
				return fmt.Errorf("failed to fetch published holidays: %w", err)
			}

			missing, extra := calendar.DiffHolidays(german.Holidays(year), published)

			out := cmd.OutOrStdout()
			for _, h := range missing {
				fmt.Fprintf(out, "  - %s %s (computed only)\n", h.Date, h.LocalName)
			}
			for _, h := range extra {
				fmt.Fprintf(out, "  + %s %s (published only)\n", h.Date, h.LocalName)
			}

			if len(missing) > 0 || len(extra) > 0 {
				return fmt.Errorf("holidays %d (%s) differ: %d computed only, %d published only",
					year, german.Jurisdiction().State, len(missing), len(extra))
			}

			fmt.Fprintf(out, "Holidays %d (%s) match: %d dates\n", year, german.Jurisdiction().State, len(published))
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year (default: current year)")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			german, cal := initializeCalendar(cfg)

			generator, err := slots.NewGenerator(cal, cfg.Hours.Policy(), cfg.Slots.DurationMinutes, cfg.Slots.MinNoticeMinutes)
			if err != nil {
				return err
			}
			generator.SetLocation(cfg.Calendar.Location())

			var metrics *httpapi.Metrics
			reg := prometheus.NewRegistry()
			if cfg.Server.MetricsEnabled {
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics = httpapi.NewMetrics(reg)
				logger.Info("Metrics enabled", zap.String("path", cfg.Server.MetricsPath))
			}

			server := httpapi.NewServer(german, cal, cfg.Hours.Policy(), generator, metrics, logger)

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      server.Router(cfg.Server.MetricsPath, reg),
				ReadTimeout:  cfg.Server.GetReadTimeout(),
				WriteTimeout: cfg.Server.GetWriteTimeout(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting server",
					zap.String("addr", cfg.Server.Addr),
					zap.String("state", german.Jurisdiction().State))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Info("Server stopped gracefully")
			return nil
		},
	}
}
