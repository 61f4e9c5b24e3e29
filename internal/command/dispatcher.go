package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/metrics"
)

// Dispatcher routes command lines to registered commands. It is safe for
// concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]Command
	metrics  *metrics.Metrics
}

// NewDispatcher creates an empty dispatcher. m may be nil.
func NewDispatcher(m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]Command),
		metrics:  m,
	}
}

// Register adds cmd. Names are case-insensitive.
func (d *Dispatcher) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name must not be empty")
	}
	if cmd.Execute == nil {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	key := strings.ToLower(cmd.Name)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.commands[key]; ok {
		return &AlreadyRegisteredError{Name: cmd.Name}
	}
	d.commands[key] = cmd
	return nil
}

func (d *Dispatcher) lookup(src Source, name string) (Command, bool) {
	d.mu.RLock()
	cmd, ok := d.commands[strings.ToLower(name)]
	d.mu.RUnlock()
	if !ok || !cmd.Allowed(src) {
		return Command{}, false
	}
	return cmd, true
}

// Dispatch parses line (without any leading prefix character) and runs the
// matching command. Quoted words count as one argument. A wrong argument
// count or a malformed quote sends feedback to src and returns 0 without
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, src Source, line string) (int, error) {
	fields, err := splitArgs(line)
	if err != nil {
		src.SendFeedback(chat.Text("Malformed arguments: " + err.Error()).WithColor(chat.Red))
		return 0, nil
	}
	if len(fields) == 0 {
		return 0, &UnknownCommandError{}
	}
	cmd, ok := d.lookup(src, fields[0])
	if !ok {
		return 0, &UnknownCommandError{Name: fields[0]}
	}
	args := fields[1:]
	if cmd.Args >= 0 && len(args) != cmd.Args {
		src.SendFeedback(chat.Text("Usage: " + cmd.Usage).WithColor(chat.Red))
		return 0, nil
	}
	d.metrics.ObserveCommand(strings.ToLower(cmd.Name))
	return cmd.Execute(ctx, src, args), nil
}

// Complete returns suggestions for a partially typed line. Without a space it
// completes command names; otherwise it asks the command for its argument
// suggestions.
func (d *Dispatcher) Complete(src Source, line string) []string {
	name, rest, hasArgs := strings.Cut(strings.TrimLeft(line, " "), " ")
	if !hasArgs {
		var out []string
		for _, cmd := range d.Commands(src) {
			if strings.HasPrefix(strings.ToLower(cmd.Name), strings.ToLower(name)) {
				out = append(out, cmd.Name)
			}
		}
		return out
	}

	cmd, ok := d.lookup(src, name)
	if !ok || cmd.Suggest == nil {
		return nil
	}
	// Only the first argument is completed.
	if strings.Contains(strings.TrimLeft(rest, " "), " ") {
		return nil
	}
	return cmd.Suggest(src, strings.TrimLeft(rest, " "))
}

// Commands lists the commands src may use, sorted by name.
func (d *Dispatcher) Commands(src Source) []Command {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Command, 0, len(d.commands))
	for _, cmd := range d.commands {
		if cmd.Allowed(src) {
			out = append(out, cmd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
