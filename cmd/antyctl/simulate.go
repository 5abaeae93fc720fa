package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/debugserver"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/mascot"
)

const (
	defaultSettle = 10.0
	frame         = 1.0 / mascot.DefaultFPS
)

type simulateOptions struct {
	Steps   []step
	Config  *config.Config
	Catalog *emotion.Catalog
	Seed    int64
	// Settle bounds how long each step may run before the next starts.
	Settle float64
	Logger zerolog.Logger
}

func newSimulateCmd() *cobra.Command {
	var (
		file   string
		seed   int64
		settle float64
		asleep bool
	)
	cmd := &cobra.Command{
		Use:   "simulate [step...]",
		Short: "Play a script of emotions in simulated time",
		Long: `Play a script headless at 60 fps and print every state change.

Steps are emotion names (happy, celebrate@3, spin!) or one of
off, wake, search, exit-search, pause, resume, recover, size=PX,
super=SCALE and wait=SECONDS.`,
		Example: "  antyctl simulate happy wait=1 off wake celebrate@3 nod",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if asleep {
				cfg.Character.StartAsleep = true
			}
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			_, err = simulate(cmd.OutOrStdout(), simulateOptions{
				Steps:   steps,
				Config:  cfg,
				Catalog: cat,
				Seed:    seed,
				Settle:  settle,
				Logger:  newLogger(cmd.ErrOrStderr()),
			})
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog override YAML")
	cmd.Flags().Int64Var(&seed, "seed", 1, "blink scheduler seed")
	cmd.Flags().Float64Var(&settle, "settle", defaultSettle, "max seconds per step")
	cmd.Flags().BoolVar(&asleep, "asleep", false, "start powered off")
	return cmd
}

// simulate runs opts.Steps against a fresh character and writes a log of
// state changes to w. It returns the final snapshot.
func simulate(w io.Writer, opts simulateOptions) (*mascot.Snapshot, error) {
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	ch := mascot.New(mascot.Options{
		Config:  opts.Config,
		Catalog: opts.Catalog,
		Logger:  opts.Logger,
		Rand:    rand.New(rand.NewSource(opts.Seed)),
	})
	defer ch.Destroy()
	exec := debugserver.New(ch, nil, opts.Logger)

	r := &recorder{w: w, ch: ch}
	r.observe()
	for _, s := range opts.Steps {
		if s.Wait > 0 || s.Command.Type == "" {
			r.line(dimStyle.Render(fmt.Sprintf("wait %.2fs", s.Wait)))
			r.advance(s.Wait)
			continue
		}
		ack := exec.Execute(s.Command)
		r.line(describe(s.Command, ack))
		if ack.Error != "" {
			return nil, fmt.Errorf("%s: %s", s.Command.Type, ack.Error)
		}
		r.observe()
		if !r.settle(opts.Settle) {
			r.line(errorStyle.Render(fmt.Sprintf("still %s after %.1fs", ch.State(), opts.Settle)))
		}
	}

	snap := ch.Snapshot()
	fmt.Fprintf(w, "%s state %s, eyes %s, %d blinks\n",
		successStyle.Render(fmt.Sprintf("done at %.2fs:", r.elapsed)), snap.State, snap.Eyes, snap.Blinks)
	return &snap, nil
}

type recorder struct {
	w       io.Writer
	ch      *mascot.Character
	elapsed float64
	state   avatar.State
	emotion emotion.Type
}

func (r *recorder) line(msg string) {
	fmt.Fprintf(r.w, "%7.2fs  %s\n", r.elapsed, msg)
}

// observe prints the state when it differs from the last one seen.
func (r *recorder) observe() {
	state, emo := r.ch.State(), r.ch.Emotion()
	if state == r.state && emo == r.emotion {
		return
	}
	r.state, r.emotion = state, emo
	msg := stateStyle.Render(string(state))
	if state == avatar.StateEmotion && emo != "" {
		msg += " " + string(emo)
	}
	r.line(msg)
}

func (r *recorder) tick() {
	r.ch.Tick(frame)
	r.elapsed += frame
	r.observe()
}

func (r *recorder) advance(seconds float64) {
	for end := r.elapsed + seconds; r.elapsed+frame/2 < end; {
		r.tick()
	}
}

// settle ticks until nothing is playing or queued, or limit passes.
func (r *recorder) settle(limit float64) bool {
	for start := r.elapsed; r.elapsed-start < limit; {
		if quiet(r.ch.DebugInfo()) {
			return true
		}
		r.tick()
	}
	return quiet(r.ch.DebugInfo())
}

func quiet(info avatar.DebugInfo) bool {
	switch info.State {
	case avatar.StatePaused, avatar.StateSearch:
		return true
	case avatar.StateIdle, avatar.StateOff:
		return info.Active == "" && len(info.Queue) == 0
	}
	return false
}

func describe(cmd debugserver.Command, ack debugserver.Ack) string {
	what := "> " + string(cmd.Type)
	if cmd.Emotion != "" {
		what += " " + cmd.Emotion
	}
	switch {
	case ack.Error != "":
		return errorStyle.Render(what + ": " + ack.Error)
	case ack.OK:
		return what
	}
	return what + dimStyle.Render(" (declined or queued)")
}
