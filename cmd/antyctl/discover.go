package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/discovery"
)

// autoURL makes remote commands discover the server.
const autoURL = "auto"

func newDiscoverCmd() *cobra.Command {
	var urls []string
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find running previews with a debug server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := discovery.DefaultConfig()
			cfg.CustomURLs = append(cfg.CustomURLs, urls...)
			svc := discovery.NewService(cfg, newLogger(cmd.ErrOrStderr()))
			printInstances(cmd.OutOrStdout(), svc.Scan(commandContext(cmd)))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&urls, "probe", nil, "extra base URLs to check")
	return cmd
}

func printInstances(w io.Writer, list []*discovery.Instance) {
	if len(list) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No debug servers found. Enable debug.enabled in the preview config."))
		return
	}
	for _, inst := range list {
		fmt.Fprintf(w, "%s  %-10s %3dms  %d clients\n",
			successStyle.Render(inst.URL), stateStyle.Render(inst.State), inst.Latency, inst.Clients)
	}
}

// resolveURL returns --url, discovering a server when it is "auto".
func resolveURL(ctx context.Context, svc *discovery.Service) (string, error) {
	if serverURL != autoURL {
		return serverURL, nil
	}
	if svc == nil {
		svc = discovery.NewService(nil, newLogger(io.Discard))
	}
	svc.Scan(ctx)
	if inst := svc.Selected(); inst != nil {
		return inst.URL, nil
	}
	return "", errors.New("no running debug server found")
}
