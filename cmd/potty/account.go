package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
	"pottytracker/internal/service"
)

var (
	signupReq     service.SignupRequest
	loginEmail    string
	loginPassword string
	accountFilter string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Long: `Create a local account. With --token the account joins the family that
issued the partner invite; without it a new family is started.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.Signup(cmd.Context(), signupReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s <%s>\nFamily: %s\n", user.Name, user.Email, user.FamilyID)
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to an existing account",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := a.Auth.ClearSession(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		user, err := a.Auth.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nFamily: %s\n", user.Name, user.Email, user.FamilyID)
		return nil
	}),
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List local accounts for quick login",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		accounts, err := a.Auth.SearchAccounts(cmd.Context(), accountFilter)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts found")
			return nil
		}
		for _, u := range accounts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", u.Name, labelStyle.Render(u.Email))
		}
		return nil
	}),
}

func init() {
	signupCmd.Flags().StringVarP(&signupReq.Email, "email", "e", "", "Email address")
	signupCmd.Flags().StringVar(&signupReq.FirstName, "first", "", "First name")
	signupCmd.Flags().StringVar(&signupReq.LastName, "last", "", "Last name")
	signupCmd.Flags().StringVarP(&signupReq.Password, "password", "p", "", "Password")
	signupCmd.Flags().StringVarP(&signupReq.PartnerToken, "token", "t", "", "Partner invite token")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email address")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")

	accountsCmd.Flags().StringVarP(&accountFilter, "filter", "f", "", "Fuzzy filter on name and email")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd, accountsCmd)
}
