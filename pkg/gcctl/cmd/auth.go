package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/auth"
	"github.com/telekom/gcctl/pkg/gcctl/output"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored OAuth credential",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Acquire a new access token with the client credentials grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			provider, err := rt.buildProvider()
			if err != nil {
				return err
			}
			cred, err := provider.Acquire(cmd.Context())
			if err != nil {
				return err
			}
			if expires := cred.ExpiresAt(); !expires.IsZero() {
				_, _ = fmt.Fprintf(rt.Writer(), "Authenticated. Token expires at %s\n", expires.UTC().Format(time.RFC3339))
				return nil
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Authenticated")
			return nil
		},
	}
}

// credentialStatus is what `auth status` reports about the stored credential.
type credentialStatus struct {
	Authenticated bool           `json:"authenticated" yaml:"authenticated"`
	Storage       string         `json:"storage" yaml:"storage"`
	Token         string         `json:"token,omitempty" yaml:"token,omitempty"`
	TokenType     string         `json:"tokenType,omitempty" yaml:"tokenType,omitempty"`
	AcquiredAt    *time.Time     `json:"acquiredAt,omitempty" yaml:"acquiredAt,omitempty"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired       bool           `json:"expired" yaml:"expired"`
	Claims        map[string]any `json:"claims,omitempty" yaml:"claims,omitempty"`
}

func newCredentialStatus(storage string, cred *auth.Credential, now time.Time) credentialStatus {
	status := credentialStatus{Storage: storage}
	if cred == nil {
		return status
	}
	status.Authenticated = true
	status.Token = cred.Redacted()
	status.TokenType = cred.TokenType
	if !cred.AcquiredAt.IsZero() {
		acquired := cred.AcquiredAt
		status.AcquiredAt = &acquired
	}
	if expires := cred.ExpiresAt(); !expires.IsZero() {
		status.ExpiresAt = &expires
		status.Expired = !now.Before(expires)
	}
	status.Claims = tokenClaims(cred.AccessToken)
	return status
}

// tokenClaims decodes the claims of a JWT access token without verifying
// it. Opaque tokens yield nil.
func tokenClaims(token string) map[string]any {
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func (s credentialStatus) rows() []output.Row {
	if !s.Authenticated {
		return []output.Row{{Key: "Status", Value: "Not authenticated"}, {Key: "Storage", Value: s.Storage}}
	}
	rows := []output.Row{
		{Key: "Status", Value: "Authenticated"},
		{Key: "Storage", Value: s.Storage},
		{Key: "Token", Value: s.Token},
		{Key: "Token Type", Value: s.TokenType},
	}
	if s.AcquiredAt != nil {
		rows = append(rows, output.Row{Key: "Acquired", Value: output.FormatTime(*s.AcquiredAt)})
	}
	if s.ExpiresAt != nil {
		rows = append(rows,
			output.Row{Key: "Expires", Value: output.FormatTime(*s.ExpiresAt)},
			output.Row{Key: "Expired", Value: strconv.FormatBool(s.Expired)},
		)
	}
	for _, key := range []string{"sub", "client_id", "org_id", "iss"} {
		if v, ok := s.Claims[key]; ok {
			rows = append(rows, output.Row{Key: "Claim " + key, Value: fmt.Sprint(v)})
		}
	}
	return rows
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential",
		Long: `Shows the stored credential without contacting the platform. The expiry
is estimated from the time the token was acquired; the platform may still
reject the token earlier.`,
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
			store, err := rt.buildStore()
			if err != nil {
				return err
			}
			var stored *auth.Credential
			cred, err := store.Load()
			switch {
			case err == nil:
				stored = &cred
			case errors.Is(err, auth.ErrNotFound):
			default:
				rt.Logger().Warnw("Stored credential is unreadable", "error", err)
			}

			status := newCredentialStatus(rt.TokenStorage(), stored, time.Now())
			if format == output.FormatTable {
				output.WriteDetails(rt.Writer(), status.rows())
				return nil
			}
			return output.WriteObject(rt.Writer(), format, status)
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			store, err := rt.buildStore()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			return nil
		},
	}
}
