package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
)

var (
	inviteEmail string
	inviteName  string
)

var childCmd = &cobra.Command{
	Use:   "child",
	Short: "Manage the family's children",
}

var childAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a child to your family",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.RequireUser(cmd.Context())
		if err != nil {
			return err
		}
		child, err := a.Families.AddChild(cmd.Context(), user.FamilyID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", child.Name, child.ID)
		return nil
	}),
}

var childListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your family's children",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.RequireUser(cmd.Context())
		if err != nil {
			return err
		}
		children, err := a.Families.Children(cmd.Context(), user.FamilyID)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No children yet. Add one with: potty child add NAME")
			return nil
		}
		for _, c := range children {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", c.Name, labelStyle.Render(c.ID))
		}
		return nil
	}),
}

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite a partner to join your family",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.RequireUser(cmd.Context())
		if err != nil {
			return err
		}
		inv, err := a.Families.InvitePartner(cmd.Context(), user, inviteName, inviteEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invite code for %s: %s\n", inv.InviteeEmail, titleStyle.Render(inv.Token))
		if a.Email.IsEnabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "The code has been emailed.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Share it so they can run: potty signup --token CODE")
		}
		return nil
	}),
}

func init() {
	inviteCmd.Flags().StringVarP(&inviteEmail, "email", "e", "", "Partner's email address")
	inviteCmd.Flags().StringVarP(&inviteName, "name", "n", "", "Partner's name")
	_ = inviteCmd.MarkFlagRequired("email")

	childCmd.AddCommand(childAddCmd, childListCmd)
	rootCmd.AddCommand(childCmd, inviteCmd)
}
