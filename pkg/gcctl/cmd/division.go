package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/gcctl/output"
)

func NewDivisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "division",
		Aliases: []string{"divisions"},
		Short:   "Inspect authorization divisions",
	}
	cmd.AddCommand(
		newDivisionListCommand(),
		newDivisionGetCommand(),
	)
	return cmd
}

func newDivisionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all divisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			c, err := rt.buildClient()
			if err != nil {
				return err
			}
			divisions, err := client.RetryOnExpiry(cmd.Context(), c.Divisions().List)
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteDivisionTable(rt.Writer(), divisions)
				return nil
			}
			return output.WriteObject(rt.Writer(), format, divisions)
		},
	}
}

func newDivisionGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [NAME]",
		Short: "Show one division by exact name; defaults to the provisioning division",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				targets, err := rt.cfg.Provisioning.Render()
				if err != nil {
					return err
				}
				name = targets.Division
			}
			c, err := rt.buildClient()
			if err != nil {
				return err
			}
			division, err := client.RetryOnExpiry(cmd.Context(), func(ctx context.Context) (*client.Division, error) {
				return c.Divisions().FindByName(ctx, name)
			})
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteDetails(rt.Writer(), output.DivisionRows(division))
				return nil
			}
			return output.WriteObject(rt.Writer(), format, division)
		},
	}
}
