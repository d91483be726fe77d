// Package account groups the signup, login, logout, and whoami commands that
// drive the provisioning and session flows against the platform API.
package account

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vermimetrics/vermi-platform/apps/cli/wiring"
	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/onboarding"
	"github.com/vermimetrics/vermi-platform/pkg/session"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// Command groups the account subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the VermiMetrics account and session",
	}

	cmd.AddCommand(signupCommand())
	cmd.AddCommand(loginCommand())
	cmd.AddCommand(logoutCommand())
	cmd.AddCommand(whoamiCommand())
	return cmd
}

func signupCommand() *cobra.Command {
	var (
		name       string
		email      string
		password   string
		locationID int64
		tankIDs    []int64
	)

	c := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account and assign tanks",
		Long: "Register a new account: validates the credentials, lists the tanks at the " +
			"chosen location, and provisions the account with the selected tanks. Run " +
			"without --tanks to browse the location first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			pending := onboarding.NewPendingStore(w.Local)
			provisioner := onboarding.NewProvisioner(w.Identity, w.API)
			collector := onboarding.NewCollector(pending, provisioner)

			_, err = collector.Submit(ctx, onboarding.Form{
				Mode:            onboarding.ModeRegister,
				Name:            name,
				Email:           email,
				Password:        password,
				ConfirmPassword: password,
			})
			if err != nil {
				return renderFlowError(cmd, err)
			}

			selector := onboarding.NewSelector(pending, w.API, w.API, provisioner, w.Local)
			if _, err := selector.Activate(); err != nil {
				return err
			}

			if locationID == 0 {
				locations, err := selector.LoadLocations(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pick a location and re-run with --location:")
				for _, loc := range locations {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d\t%s\n", loc.ID, loc.Name)
				}
				return nil
			}

			tanksBySite, err := selector.SelectLocation(ctx, locationID)
			if err != nil {
				return err
			}

			if len(tankIDs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Pick tanks and re-run with --tanks:")
				printTanksBySite(cmd, tanksBySite)
				return nil
			}
			for _, id := range tankIDs {
				selector.Toggle(id)
			}

			result, err := selector.Submit(ctx)
			if err != nil {
				return renderFlowError(cmd, err)
			}

			if result.EmailConflict {
				fmt.Fprintf(cmd.OutOrStdout(), "An account already exists for %s. Sign in instead:\n", result.Email)
				fmt.Fprintf(cmd.OutOrStdout(), "  vermi account login --email %s\n", result.Email)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created. User id: %s\n", result.Provisioned.UserID)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "full name")
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	c.Flags().Int64Var(&locationID, "location", 0, "location id (omit to list locations)")
	c.Flags().Int64SliceVar(&tankIDs, "tanks", nil, "tank ids to assign (comma-separated)")

	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")

	return c
}

func loginCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and bootstrap the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			pending := onboarding.NewPendingStore(w.Local)
			provisioner := onboarding.NewProvisioner(w.Identity, w.API)
			collector := onboarding.NewCollector(pending, provisioner)

			result, err := collector.Submit(ctx, onboarding.Form{
				Mode:     onboarding.ModeSignIn,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return renderFlowError(cmd, err)
			}

			store := session.NewStore(w.Identity, w.API, w.Local)
			if err := store.RefreshUser(ctx); err != nil {
				return fmt.Errorf("load profile: %w", err)
			}

			state := store.Snapshot()
			if state.User != nil {
				if err := w.Local.Set(localstore.KeyAccessToken, result.Session.IDToken); err != nil {
					return err
				}
				if err := w.Local.Set(localstore.KeyUserID, state.User.UserID.String()); err != nil {
					return err
				}
				if err := w.Local.Set(localstore.KeyEmail, state.User.Email); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", state.User.Username, state.User.Email)
			}
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")

	return c
}

func logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			store := session.NewStore(w.Identity, w.API, w.Local)
			guard := session.NewGuard(store, func(route session.Route) {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out. Next: %s\n", route)
			}, 150*time.Millisecond)

			guard.Logout()
			return nil
		},
	}
}

func whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			var token string
			found, err := w.Local.Get(localstore.KeyAccessToken, &token)
			if err != nil {
				return err
			}
			if !found || token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}

			if _, err := w.Identity.Restore(ctx, token); err != nil {
				return fmt.Errorf("restore session: %w", err)
			}

			store := session.NewStore(w.Identity, w.API, w.Local)
			if err := store.RefreshUser(ctx); err != nil {
				return fmt.Errorf("load profile: %w", err)
			}

			state := store.Snapshot()
			if state.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", state.User.Username, state.User.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "  user id:  %s\n", state.User.UserID)
			fmt.Fprintf(cmd.OutOrStdout(), "  location: %d\n", state.User.LocationID)
			return nil
		},
	}
}

// renderFlowError turns onboarding errors into readable CLI output.
func renderFlowError(cmd *cobra.Command, err error) error {
	var validation *onboarding.ValidationError
	if errors.As(err, &validation) {
		fields := make([]string, 0, len(validation.Fields))
		for field := range validation.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, msg := range validation.Fields[field] {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
			}
		}
		return errors.New("invalid input")
	}

	var invalidCreds *onboarding.InvalidCredentialsError
	if errors.As(err, &invalidCreds) {
		return errors.New("invalid login credentials")
	}

	return err
}

func printTanksBySite(cmd *cobra.Command, tanksBySite map[int64][]vermisdk.Tank) {
	siteIDs := make([]int64, 0, len(tanksBySite))
	for siteID := range tanksBySite {
		siteIDs = append(siteIDs, siteID)
	}
	sort.Slice(siteIDs, func(i, j int) bool { return siteIDs[i] < siteIDs[j] })

	for _, siteID := range siteIDs {
		fmt.Fprintf(cmd.OutOrStdout(), "  site %d:\n", siteID)
		for _, tank := range tanksBySite[siteID] {
			fmt.Fprintf(cmd.OutOrStdout(), "    %d\t%s\n", tank.ID, tank.Name)
		}
	}
}
