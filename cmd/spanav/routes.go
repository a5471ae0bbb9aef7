package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spanav/pkg/router"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List the configured routes in matching order with their placeholders.

Routes are tried top to bottom and the first match wins, so a general
route listed above a specific one hides it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Base routes: %s\n\n", strings.Join(cfg.BaseRouteSet(), ", "))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tPATTERN\tVARIABLES\tTITLE")
			for i, r := range cfg.Routes {
				pattern := r.Pattern
				if pattern == "" {
					pattern = `""`
				}
				vars := strings.Join(router.ParsePattern(r.Pattern).VariableNames(), ", ")
				if vars == "" {
					vars = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, pattern, vars, r.Title)
			}
			return w.Flush()
		},
	}
}
