// Command merkletree builds hash trees over typed values and prints roots,
// proofs and snapshots.
//
// Every flag may also be set from the environment, MERKLETREE_<FLAG> with
// dashes replaced by underscores.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "MERKLETREE"

type app struct {
	v   *viper.Viper
	log logger.Logger
}

func newCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "merkletree",
		Short:         "Build hash trees over typed values",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			logger.New(a.v.GetString("log-level"))
			a.log = logger.Sugar.WithServiceName("merkletree")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.OnExit()
		},
	}
	cmd.PersistentFlags().String("log-level", "NOOP", "log level, for example INFO or DEBUG")

	cmd.AddCommand(
		a.rootCommand(),
		a.proofCommand(),
		a.dumpCommand(),
		a.verifyCommand(),
		a.sealCommand(),
	)
	return cmd
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
