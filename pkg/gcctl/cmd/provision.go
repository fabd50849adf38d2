package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/output"
	"github.com/telekom/gcctl/pkg/gcctl/provision"
)

func NewProvisionCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Look up the division and set up queue, member, flow and web deployment",
		Long: `Runs the provisioning stages in order: division lookup, queue (found or
created), queue member, inbound message flow (found or created) and web
messaging deployment. A failed stage skips the stages that depend on it.
Names come from the provisioning section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			targets, err := rt.cfg.Provisioning.Render()
			if err != nil {
				return err
			}
			c, err := rt.buildClient()
			if err != nil {
				return err
			}

			p := provision.New(provision.NewClientAPI(c), rt.Logger().Named("provision"))
			report, err := p.Run(cmd.Context(), targets)
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteReportTable(rt.Writer(), report)
			} else if err := output.WriteObject(rt.Writer(), format, report); err != nil {
				return err
			}

			if strict && report.Failed() {
				return errors.Join(fmt.Errorf("provisioning failed: %w", report.Err()), rt.writeMetrics())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any stage failed")
	return cmd
}
