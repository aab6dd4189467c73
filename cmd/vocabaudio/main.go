package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabaudio/internal/cli"
	"codeberg.org/snonux/vocabaudio/internal/logging"
	"codeberg.org/snonux/vocabaudio/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// The log file is opened once the flags are parsed.
	logs := logging.Discard()
	defer func() { _ = logs.Close() }()

	newRunner := func() (cli.Runner, error) {
		if !flags.NoLog {
			rt, err := logging.New(flags.Verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to open log file: %v\n", err)
			} else {
				logs = rt
			}
		}
		return processor.NewProcessor(flags, viper.GetViper(), processor.WithLogger(logs.Logger)), nil
	}

	// Create root command
	rootCmd := cli.CreateRootCommand(flags, newRunner)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		_ = logs.Close()
		os.Exit(1)
	}
}
