package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHashPasswordCmd(opts *options) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for a password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain, err := readPassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			hasher, err := opts.container.Hasher.Load()
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(cmd.Context(), plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prefer stdin to keep it out of shell history)")
	return cmd
}

func newVerifyPasswordCmd(opts *options) *cobra.Command {
	var (
		password string
		hash     string
	)

	cmd := &cobra.Command{
		Use:   "verify-password",
		Short: "Check a password from stdin against a stored hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain, err := readPassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			hasher, err := opts.container.Hasher.Load()
			if err != nil {
				return err
			}
			ok, err := hasher.Verify(cmd.Context(), plain, hash)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("password does not match")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password matches")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prefer stdin)")
	cmd.Flags().StringVar(&hash, "hash", "", "stored password hash")
	_ = cmd.MarkFlagRequired("hash")
	return cmd
}
