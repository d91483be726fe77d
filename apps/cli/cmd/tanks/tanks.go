// Package tanks exposes the tank catalog over the CLI.
package tanks

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vermimetrics/vermi-platform/apps/cli/wiring"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// Command groups the catalog subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tanks",
		Short: "Browse the tank catalog",
	}

	cmd.AddCommand(locationsCommand())
	cmd.AddCommand(sitesCommand())
	cmd.AddCommand(listCommand())
	cmd.AddCommand(infoCommand())
	return cmd
}

func locationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			locations, err := w.API.ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			for _, loc := range locations {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", loc.ID, loc.Name)
			}
			return nil
		},
	}
}

func sitesCommand() *cobra.Command {
	var locationID int64

	c := &cobra.Command{
		Use:   "sites",
		Short: "List sites at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			sites, err := w.API.ListSites(cmd.Context(), locationID)
			if err != nil {
				return err
			}
			for _, site := range sites {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", site.ID, site.Name)
			}
			return nil
		},
	}

	c.Flags().Int64Var(&locationID, "location", 0, "location id")
	_ = c.MarkFlagRequired("location")
	return c
}

func listCommand() *cobra.Command {
	var (
		locationID int64
		siteID     int64
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List tanks at a location or site",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (locationID == 0) == (siteID == 0) {
				return fmt.Errorf("exactly one of --location or --site is required")
			}

			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			var tanks []vermisdk.Tank
			if locationID != 0 {
				tanks, err = w.API.ListTanksByLocation(cmd.Context(), locationID)
			} else {
				tanks, err = w.API.ListTanksBySite(cmd.Context(), siteID)
			}
			if err != nil {
				return err
			}

			printTanks(cmd, tanks)
			return nil
		},
	}

	c.Flags().Int64Var(&locationID, "location", 0, "location id")
	c.Flags().Int64Var(&siteID, "site", 0, "site id")
	return c
}

func infoCommand() *cobra.Command {
	var ids []int64

	c := &cobra.Command{
		Use:   "info",
		Short: "Show tanks by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wiring.Wire()
			if err != nil {
				return err
			}

			tanks, err := w.API.GetTanksByIDs(cmd.Context(), ids)
			if err != nil {
				return err
			}

			printTanks(cmd, tanks)
			return nil
		},
	}

	c.Flags().Int64SliceVar(&ids, "ids", nil, "tank ids (comma-separated)")
	_ = c.MarkFlagRequired("ids")
	return c
}

func printTanks(cmd *cobra.Command, tanks []vermisdk.Tank) {
	for _, tank := range tanks {
		desc := ""
		if tank.Description != nil {
			desc = *tank.Description
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tsite=%d\tlocation=%d\t%s\n", tank.ID, tank.Name, tank.SiteID, tank.LocationID, desc)
	}
}
