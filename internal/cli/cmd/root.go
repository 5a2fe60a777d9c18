package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dfworx/auth-service/config"
	"github.com/dfworx/auth-service/internal/app"
	"github.com/dfworx/auth-service/internal/pkg/logger"
	"github.com/spf13/cobra"
)

type options struct {
	env       string
	container *app.Container
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Operator CLI for the DFWorX auth service",
		Long:          "Hash and check passwords, mint and inspect access tokens, and seed users using the service configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.env)
			if err != nil {
				return err
			}
			opts.container = app.NewContainer(cfg, logger.New(cmd.ErrOrStderr(), cfg.Log.Level))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.container == nil {
				return nil
			}
			return opts.container.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", os.Getenv("APP_ENV"), "config environment (config/envs/<env>.yaml)")

	rootCmd.AddCommand(
		newHashPasswordCmd(opts),
		newVerifyPasswordCmd(opts),
		newIssueTokenCmd(opts),
		newVerifyTokenCmd(opts),
		newCreateUserCmd(opts),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// readPassword takes the flag value if set, otherwise the first line of stdin.
func readPassword(in io.Reader, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required (use --password or stdin)")
	}
	return password, nil
}
