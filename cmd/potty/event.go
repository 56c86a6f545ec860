package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
	"pottytracker/internal/models"
	"pottytracker/internal/stats"
)

var (
	logType     string
	logAt       string
	eventsToday bool
	editAt      string
)

var logCmd = &cobra.Command{
	Use:   "log CHILD",
	Short: "Log an event for a child (now, or --at)",
	Long: `Log an event. CHILD is a name or id. Types: potty (default), wakeup,
breakfast, lunch, dinner, snack, meal, nap.

Examples:
  potty log Mia
  potty log Mia --type breakfast
  potty log Mia --at 07:45`,
	Args: cobra.ExactArgs(1),
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
		typ, err := models.ParseEventType(logType)
		if err != nil {
			return err
		}

		var ev *models.PottyEvent
		if logAt == "" {
			ev, err = a.Events.LogEvent(ctx, child.ID, typ)
		} else {
			var when time.Time
			when, err = parseWhen(logAt, time.Now(), a.Location)
			if err != nil {
				return err
			}
			ev = &models.PottyEvent{ChildID: child.ID, Timestamp: when.UnixMilli(), Type: typ}
			ev.ID, err = a.Events.SaveEvent(ctx, *ev)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s, %s\n", typ.Icon(), typ.Label(), child.Name, stats.FormatDateTime(ev.Timestamp, a.Location))
		fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render("id "+ev.ID))
		return nil
	}),
}

var eventsCmd = &cobra.Command{
	Use:   "events CHILD",
	Short: "Show a child's history, grouped by day",
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

		if eventsToday {
			events = stats.EventsOn(events, time.Now(), a.Location)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events logged yet")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), renderHistory(stats.GroupByDay(events, a.Location), a.Location))
		return nil
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit EVENT_ID",
	Short: "Move an event to a new date and time",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ctx := cmd.Context()
		user, err := a.Auth.RequireUser(ctx)
		if err != nil {
			return err
		}
		ev, err := eventForUser(cmd, a, user, args[0])
		if err != nil {
			return err
		}
		when, err := parseWhen(editAt, time.Now(), a.Location)
		if err != nil {
			return err
		}
		updated, err := a.Events.UpdateEvent(ctx, ev.ID, when.UnixMilli())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", stats.FormatDateTime(updated.Timestamp, a.Location))
		return nil
	}),
}

var retimeCmd = &cobra.Command{
	Use:   "retime EVENT_ID TIME",
	Short: "Correct an event's time, keeping its day",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ctx := cmd.Context()
		user, err := a.Auth.RequireUser(ctx)
		if err != nil {
			return err
		}
		ev, err := eventForUser(cmd, a, user, args[0])
		if err != nil {
			return err
		}
		hour, minute, err := parseClock(args[1])
		if err != nil {
			return err
		}
		updated, err := a.Events.CorrectTime(ctx, ev.ID, hour, minute)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Corrected to %s\n", stats.FormatDateTime(updated.Timestamp, a.Location))
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete EVENT_ID",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ctx := cmd.Context()
		user, err := a.Auth.RequireUser(ctx)
		if err != nil {
			return err
		}
		ev, err := eventForUser(cmd, a, user, args[0])
		if err != nil {
			return err
		}
		if err := a.Events.DeleteEvent(ctx, ev.ID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	}),
}

func init() {
	logCmd.Flags().StringVarP(&logType, "type", "t", "", "Event type (default potty)")
	logCmd.Flags().StringVar(&logAt, "at", "", "When it happened: HH:MM today or RFC 3339")

	eventsCmd.Flags().BoolVar(&eventsToday, "today", false, "Only today's events")

	editCmd.Flags().StringVar(&editAt, "at", "", "New time: RFC 3339, or HH:MM today")
	_ = editCmd.MarkFlagRequired("at")

	rootCmd.AddCommand(logCmd, eventsCmd, editCmd, retimeCmd, deleteCmd)
}
