// Command classevent checks event binding configuration and runs a demo of
// model lifecycle events on an in-memory database.
package main

import (
	"io"
	"os"

	"github.com/KOMKZ/go-yogan-classevent/flagx"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	Config    string `flag:"config,c" usage:"configuration directory" default:"./configs"`
	EnvPrefix string `flag:"env-prefix" usage:"environment variable prefix" default:"APP"`
	LogLevel  string `flag:"log-level" usage:"debug, info, warn or error" default:"warn"`
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts rootOptions
	cmd := &cobra.Command{
		Use:           "classevent",
		Short:         "Class-level event tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			cfg := logger.DefaultManagerConfig()
			cfg.Level = opts.LogLevel
			cfg.Encoding = "console"
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.InitManager(cfg)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	if err := flagx.BindPersistentFlags(cmd, &opts); err != nil {
		panic(err)
	}

	cmd.AddCommand(newCheckCmd(&opts), newDemoCmd())
	return cmd
}

func main() {
	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		logger.CloseAll()
		os.Exit(1)
	}
	logger.CloseAll()
}
