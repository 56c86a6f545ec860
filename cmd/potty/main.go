package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
	"pottytracker/internal/config"
	"pottytracker/internal/logging"
	"pottytracker/internal/models"
	"pottytracker/internal/service"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "potty",
	Short: "Potty Tracker - log potty events and spot daily patterns",
	Long: `A local potty-training tracker. Accounts, children and events live in the
configured store; the signed-in account is remembered between runs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("POTTY_CONFIG"), "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp opens the store for the duration of one command
func withApp(run func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if !verbose {
			cfg.Log.Level = "warn"
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(cmd, args, a)
	}
}

// resolveChild finds a child of the signed-in family by id or case-insensitive name
func resolveChild(cmd *cobra.Command, a *app.App, user *models.User, ref string) (*models.Child, error) {
	children, err := a.Families.Children(cmd.Context(), user.FamilyID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].ID == ref || strings.EqualFold(children[i].Name, ref) {
			return &children[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrChildNotFound, ref)
}

// eventForUser loads an event and checks it belongs to the signed-in family
func eventForUser(cmd *cobra.Command, a *app.App, user *models.User, id string) (*models.PottyEvent, error) {
	ev, err := a.Events.Event(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if _, err := a.Families.ChildInFamily(cmd.Context(), user.FamilyID, ev.ChildID); err != nil {
		return nil, service.ErrEventNotFound
	}
	return ev, nil
}

var clockLayouts = []string{"15:04", "3:04PM", "3:04pm", "3:04 PM", "3:04 pm", "3PM", "3pm"}

// parseClock reads a wall-clock time such as "19:30" or "7:30 PM"
func parseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid time %q, use HH:MM or H:MM PM", s)
}

// parseWhen reads an RFC 3339 timestamp, or a clock time meaning today in loc
func parseWhen(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	hour, minute, err := parseClock(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or HH:MM", s)
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc), nil
}
