package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/debugserver"
	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
)

const remoteTimeout = 5 * time.Second

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "send <step...>",
		Short:   "Send commands to a running preview",
		Long:    "Send each step to the debug server at --url. Steps use the same words as simulate; wait=SECONDS sleeps in real time.",
		Example: "  antyctl send happy\n  antyctl send off wait=2 wake",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			url, err := resolveURL(commandContext(cmd), nil)
			if err != nil {
				return err
			}
			client := debugserver.NewClient(url, newLogger(cmd.ErrOrStderr()))
			return send(commandContext(cmd), cmd.OutOrStdout(), client, steps)
		},
	}
}

func newStateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the state of a running preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveURL(commandContext(cmd), nil)
			if err != nil {
				return err
			}
			client := debugserver.NewClient(url, newLogger(cmd.ErrOrStderr()))
			ctx, cancel := context.WithTimeout(commandContext(cmd), remoteTimeout)
			defer cancel()
			snap, err := client.State(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func send(ctx context.Context, w io.Writer, client *debugserver.Client, steps []step) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, s := range steps {
		if s.Command.Type == "" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(s.Wait * float64(time.Second))):
			}
			continue
		}
		reqCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
		ack, err := client.Do(reqCtx, s.Command)
		cancel()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, describe(s.Command, *ack))
	}
	return nil
}

func printSnapshot(w io.Writer, snap *mascot.Snapshot) {
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render("state"), stateStyle.Render(string(snap.State)))
	if snap.Emotion != "" {
		fmt.Fprintf(w, "emotion   %s (%.0f%%)\n", snap.Emotion, snap.Progress*100)
	}
	fmt.Fprintf(w, "previous  %s\n", snap.Previous)
	fmt.Fprintf(w, "eyes      %s\n", snap.Eyes)
	fmt.Fprintf(w, "size      %.2fx  base %.2f  super %v\n", snap.SizeScale, snap.BaseScale, snap.SuperMode)
	fmt.Fprintf(w, "idle      playing %v  blinks %d  paused %v\n", snap.IdlePlaying, snap.Blinks, snap.BlinksPaused)
	fmt.Fprintf(w, "frame     %d  (%.2fs)\n", snap.Frame, snap.Time)
	if len(snap.Queue) > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("queue     %d pending", len(snap.Queue))))
		for _, q := range snap.Queue {
			fmt.Fprintf(w, "          %s  priority %d\n", q.Label, q.Priority)
		}
	}
}

func newLogsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log entries of a running preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveURL(commandContext(cmd), nil)
			if err != nil {
				return err
			}
			client := debugserver.NewClient(url, newLogger(cmd.ErrOrStderr()))
			ctx, cancel := context.WithTimeout(commandContext(cmd), remoteTimeout)
			defer cancel()
			entries, err := client.Logs(ctx, limit)
			if err != nil {
				return err
			}
			printLogs(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of entries, 0 for all")
	return cmd
}

func printLogs(w io.Writer, entries []logging.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No log entries"))
		return
	}
	for _, e := range entries {
		level := e.Level
		if level == "error" || level == "warn" {
			level = errorStyle.Render(level)
		}
		fmt.Fprintf(w, "%s %-5s %-12s %s", dimStyle.Render(e.Timestamp), level, e.Component, e.Message)
		if e.Data != "" {
			fmt.Fprintf(w, " %s", dimStyle.Render(e.Data))
		}
		fmt.Fprintln(w)
	}
}
