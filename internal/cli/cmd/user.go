package cmd

import (
	"fmt"

	"github.com/dfworx/auth-service/internal/account"
	"github.com/spf13/cobra"
)

func newCreateUserCmd(opts *options) *cobra.Command {
	var (
		email    string
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user in the configured database and print an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain, err := readPassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			in := account.RegisterInput{Email: email, Password: plain, Name: name}
			if err := in.Validate(); err != nil {
				return err
			}

			svc, err := opts.container.Account.Load()
			if err != nil {
				return err
			}
			resp, err := svc.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer stdin)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
