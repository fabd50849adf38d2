package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/gcctl/output"
)

func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the credential belongs to",
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
			user, err := client.RetryOnExpiry(cmd.Context(), func(ctx context.Context) (*client.User, error) {
				return c.Users().Me(ctx)
			})
			if errors.Is(err, client.ErrBadRequest) {
				return fmt.Errorf("the platform has no user for this credential (client credentials tokens are not user bound): %w", err)
			}
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteDetails(rt.Writer(), output.UserRows(user))
				return nil
			}
			return output.WriteObject(rt.Writer(), format, user)
		},
	}
}
