// Package cli implements the mip command-line interface using cobra.
//
// Every subcommand lives in its own file and registers itself on rootCmd in
// init. The root command builds a charmbracelet/log logger (debug level with
// --verbose) and passes it to subcommands through the command context.
package cli
