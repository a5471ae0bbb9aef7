package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spanav/internal/config"
	"github.com/vango-dev/spanav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌─┐┌┐┌┌─┐┬  ┬
  └─┐├─┘├─┤│││├─┤└┐┌┘
  └─┘┴  ┴ ┴┘└┘┴ ┴ └┘
`

// globalFlags are shared by all commands.
type globalFlags struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			errors.Fprint(os.Stderr, e)
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "spanav",
		Short: "Client-side navigation for single page applications",
		Long: `spanav resolves browser locations against a route table and drives
single page application navigation from a Go server.

  • First-match route tables with {placeholder} segments
  • Base routes for applications mounted under a prefix
  • In-app link interception over a WebSocket bridge
  • Page view reporting to logs, Prometheus and S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: search from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		resolveCmd(flags),
		routesCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads and validates the configuration selected by flags.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
