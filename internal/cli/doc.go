// Package cli provides command-line interface setup and configuration
// for the vocabaudio application. It handles flag parsing, subcommand
// creation, and configuration management using cobra and viper. The
// commands themselves are carried out by a Runner.
package cli
