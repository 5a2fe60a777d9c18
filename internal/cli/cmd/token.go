package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dfworx/auth-service/internal/auth"
	"github.com/spf13/cobra"
)

func newIssueTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		claims  []string
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue an access token for a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenClaims := auth.Claims{"sub": subject}
			for _, kv := range claims {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid claim %q, expected key=value", kv)
				}
				tokenClaims[key] = value
			}

			tokens, err := opts.container.Tokens.Load()
			if err != nil {
				return err
			}
			token, err := tokens.Issue(tokenClaims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "subject (user id)")
	cmd.Flags().StringArrayVar(&claims, "claim", nil, "extra claim as key=value, repeatable")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func newVerifyTokenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-token <token>",
		Short: "Verify an access token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := opts.container.Tokens.Load()
			if err != nil {
				return err
			}
			payload, err := tokens.Verify(args[0])
			if err != nil {
				return err
			}

			out := map[string]any{
				"claims":     payload.Claims,
				"expires_at": payload.ExpiresAt.UTC().Format(time.RFC3339),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
