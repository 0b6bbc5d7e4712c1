package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wikicms/internal/app"
	"wikicms/internal/config"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return printRoutes(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func printRoutes(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, zap.NewNop().Sugar())
	if err != nil {
		return err
	}
	defer a.Close()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tNAME")
	err = a.Router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		tmpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.Join(methods, ","), tmpl, route.GetName())
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}
