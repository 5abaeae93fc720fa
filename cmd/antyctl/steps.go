package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/normanking/anty/internal/debugserver"
)

// step is one word of a script: a command, or a pause of Wait seconds.
type step struct {
	Command debugserver.Command
	Wait    float64
}

// parseStep reads words such as "happy", "celebrate@3", "spin!",
// "size=240", "super=1.3", "wait=2", "off", "wake", "search",
// "exit-search", "pause", "resume" and "recover". "!" forces an emotion and
// "@n" sets its priority.
func parseStep(word string) (step, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(word), "=")
	name = strings.ToLower(name)
	if name == "" {
		return step{}, fmt.Errorf("empty step")
	}

	value := func() (float64, error) {
		if !hasArg {
			return 0, fmt.Errorf("%s needs a value, e.g. %s=1", name, name)
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	switch name {
	case "wait":
		v, err := value()
		if err != nil {
			return step{}, err
		}
		if v < 0 {
			return step{}, fmt.Errorf("wait must not be negative")
		}
		return step{Wait: v}, nil
	case "size":
		v, err := value()
		return step{Command: debugserver.Command{Type: debugserver.CommandSize, Value: v}}, err
	case "super":
		v, err := value()
		return step{Command: debugserver.Command{Type: debugserver.CommandSuper, Value: v}}, err
	case "off", "power-off", "sleep":
		return command(debugserver.CommandPowerOff), nil
	case "wake", "wake-up", "on":
		return command(debugserver.CommandWakeUp), nil
	case "search":
		return command(debugserver.CommandSearch), nil
	case "exit-search", "found":
		return command(debugserver.CommandExitSearch), nil
	case "pause":
		return command(debugserver.CommandPause), nil
	case "resume":
		return command(debugserver.CommandResume), nil
	case "recover":
		return command(debugserver.CommandRecover), nil
	}
	if hasArg {
		return step{}, fmt.Errorf("unknown step %q", word)
	}

	cmd := debugserver.Command{Type: debugserver.CommandEmote}
	if strings.HasSuffix(name, "!") {
		cmd.Force = true
		name = strings.TrimSuffix(name, "!")
	}
	if base, prio, ok := strings.Cut(name, "@"); ok {
		p, err := strconv.Atoi(prio)
		if err != nil {
			return step{}, fmt.Errorf("priority in %q: %w", word, err)
		}
		cmd.Priority = p
		name = base
	}
	t, ok := debugserver.MapEmotion(name)
	if !ok {
		return step{}, fmt.Errorf("unknown emotion %q", name)
	}
	cmd.Emotion = string(t)
	return step{Command: cmd}, nil
}

func command(t debugserver.CommandType) step {
	return step{Command: debugserver.Command{Type: t}}
}

func parseSteps(words []string) ([]step, error) {
	steps := make([]step, 0, len(words))
	for _, w := range words {
		s, err := parseStep(w)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}
