package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
	"pottytracker/internal/service"
	"pottytracker/internal/stats"
)

var (
	statsZoom    float64
	statsZoomIn  int
	statsZoomOut int
)

var statsCmd = &cobra.Command{
	Use:   "stats CHILD",
	Short: "Chart a child's events by time of day and by day",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ctx := cmd.Context()
		user, err := a.Auth.RequireUser(ctx)
		if err != nil {
			return err
		}
		child, err := resolveChild(cmd, a, user, args[0])
		if err != nil {
			return err
		}
		events, err := a.Events.Events(ctx, child.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintf(out, "No events logged for %s yet\n", child.Name)
			return nil
		}

		zoom := stats.StepZoom(statsZoom, statsZoomIn-statsZoomOut)
		chart := stats.BuildChartData(events, a.Location)

		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s: %d events", child.Name, len(events))))
		fmt.Fprintf(out, "\n%s (zoom %.1fx)\n", titleStyle.Render("Time of day"), zoom)
		fmt.Fprint(out, renderTimeline(chart, zoom))
		fmt.Fprintln(out, labelStyle.Render(renderTrend(stats.LineOfBestFit(chart))))
		fmt.Fprintf(out, "\n%s\n", titleStyle.Render("Frequency"))
		fmt.Fprint(out, renderFrequency(stats.BinByTimeOfDay(events, a.Location)))
		fmt.Fprintf(out, "\n%s\n", titleStyle.Render("Per day"))
		fmt.Fprint(out, renderDays(stats.BinByDay(events, a.Location)))

		if left := service.EventsUntilInsights(len(events)); left > 0 {
			fmt.Fprintf(out, "\nLog %d more events to unlock insights\n", left)
		}
		return nil
	}),
}

var adviceCmd = &cobra.Command{
	Use:   "advice CHILD",
	Short: "Ask for timing advice based on a child's events",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ctx := cmd.Context()
		user, err := a.Auth.RequireUser(ctx)
		if err != nil {
			return err
		}
		child, err := resolveChild(cmd, a, user, args[0])
		if err != nil {
			return err
		}

		result, err := a.Insights.Refresh(ctx, child.ID)
		if errors.Is(err, service.ErrNotEnoughEvents) {
			return fmt.Errorf("log at least %d events for %s before asking for advice", service.MinEventsForManualRefresh, child.Name)
		}
		if err != nil {
			return err
		}
		if !a.Advisor.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render("No advice provider configured; showing general tips."))
		}
		fmt.Fprint(cmd.OutOrStdout(), renderAdvice(result))
		return nil
	}),
}

func init() {
	statsCmd.Flags().Float64VarP(&statsZoom, "zoom", "z", stats.MinZoom, "Time-of-day zoom, 1 to 5 in steps of 0.5")
	statsCmd.Flags().IntVar(&statsZoomIn, "zoom-in", 0, "Zoom in this many 0.5 steps from --zoom")
	statsCmd.Flags().IntVar(&statsZoomOut, "zoom-out", 0, "Zoom out this many 0.5 steps from --zoom")

	rootCmd.AddCommand(statsCmd, adviceCmd)
}
