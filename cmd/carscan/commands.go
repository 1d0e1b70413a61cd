package main

import (
	"fmt"

	"github.com/localnerve/carscan-store/internal/store"
	"github.com/spf13/cobra"
)

type page struct {
	limit  int
	offset int
}

func (p *page) flags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", store.DefaultLimit, "maximum number of scans")
	cmd.Flags().IntVar(&p.offset, "offset", 0, "number of scans to skip")
}

func (c *cli) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local schema and the Favorites collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// open already initialized the store
			return printJSON(cmd, map[string]bool{"ok": true})
		},
	}
}

func (c *cli) scansCommand() *cobra.Command {
	var p page
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List recent scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scans, err := c.repo.GetRecentScans(cmd.Context(), p.limit, p.offset)
			if err != nil {
				return err
			}
			return printJSON(cmd, scans)
		},
	}
	p.flags(cmd)
	return cmd
}

func (c *cli) savedCommand() *cobra.Command {
	var p page
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List saved scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scans, err := c.repo.GetSavedCollection(cmd.Context(), p.limit, p.offset)
			if err != nil {
				return err
			}
			return printJSON(cmd, scans)
		},
	}
	p.flags(cmd)
	return cmd
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search scans by name or manufacturer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scans, err := c.repo.SearchScans(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, scans)
		},
	}
}

func (c *cli) toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <scan-id>",
		Short: "Flip the saved flag of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := c.repo.ToggleSavedScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("scan %q not found", args[0])
			}
			return printJSON(cmd, map[string]string{"id": args[0]})
		},
	}
}

func (c *cli) collectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections with their cars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collections, err := c.repo.GetCollections(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, collections)
		},
	}

	var icon string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.repo.CreateCollection(cmd.Context(), args[0], icon)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"id": id})
		},
	}
	create.Flags().StringVar(&icon, "icon", "", "collection icon")

	remove := &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a collection; Favorites cannot be deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.repo.DeleteCollection(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"id": args[0]})
		},
	}

	cmd.AddCommand(create, remove)
	return cmd
}

func (c *cli) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.repo.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func (c *cli) clearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every scan, membership and image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear data without --yes")
			}
			if err := c.scans.ClearAll(cmd.Context(), c.repo, c.imgs); err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{"ok": true})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
