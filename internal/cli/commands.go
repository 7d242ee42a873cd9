// Package cli renders battle snapshots as tables and runs the interactive
// console of the serve command.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/util"
)

// Sender writes a raw command to the server.
type Sender interface {
	Send(room, text string) error
}

// CLI provides an interactive command-line interface.
type CLI struct {
	eventBus *events.EventBus
	sessions *session.Manager
	sender   Sender
	in       io.Reader
	out      io.Writer
	logger   zerolog.Logger
}

// NewCLI creates a new CLI handler. sender may be nil when no connection
// is open, in which case join and leave are refused.
func NewCLI(eventBus *events.EventBus, sessions *session.Manager, sender Sender, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		eventBus: eventBus,
		sessions: sessions,
		sender:   sender,
		in:       in,
		out:      out,
		logger:   util.ComponentLogger("cli"),
	}
}

// Start runs the command loop until ctx is cancelled or input ends.
func (c *CLI) Start(ctx context.Context) {
	fmt.Fprintln(c.out, "\nshowtrack ready. Type 'help' for available commands.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Warn().Err(err).Msg("CLI input closed")
		}
	}()

	for {
		fmt.Fprint(c.out, "showtrack> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			parts := strings.Fields(line)
			if len(parts) == 0 {
				continue
			}
			if err := c.execute(ctx, strings.ToLower(parts[0]), parts[1:]); err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		}
	}
}

// execute processes a single CLI command.
func (c *CLI) execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "h", "?":
		c.printHelp()
	case "rooms", "ls":
		RenderRooms(c.out, c.sessions.Rooms())
	case "show", "s":
		return c.cmdShow(args)
	case "perspective":
		return c.cmdPerspective(args)
	case "join":
		return c.cmdRoom("join", args)
	case "leave":
		return c.cmdRoom("leave", args)
	case "forget":
		return c.cmdForget(ctx, args)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Shutting down showtrack...")
		c.eventBus.Emit(ctx, events.Event{
			Type:   events.EventShutdown,
			Source: "cli",
		})
	default:
		fmt.Fprintf(c.out, "Unknown command: '%s'. Type 'help' for available commands.\n", cmd)
	}
	return nil
}

func (c *CLI) printHelp() {
	fmt.Fprintln(c.out, `
Commands:
  rooms                     List tracked rooms
  show <room>               Show the battle state of a room
  perspective <room> <seat> Mark a seat as yours
  join <room>               Join a room on the server
  leave <room>              Leave a room on the server
  forget <room>             Drop a room's tracker
  quit                      Shut down
  help                      Show this help message`)
}

func (c *CLI) cmdShow(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: show <room>")
	}
	snap, ok := c.sessions.Snapshot(args[0])
	if !ok {
		return fmt.Errorf("room %s is not tracked", args[0])
	}
	RenderBattle(c.out, snap)
	return nil
}

func (c *CLI) cmdPerspective(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: perspective <room> <seat>")
	}
	seat, ok := dex.ParseSeat(args[1])
	if !ok {
		return fmt.Errorf("invalid seat: %s", args[1])
	}
	if !c.sessions.SetPerspective(args[0], seat) {
		return fmt.Errorf("room %s is not tracked", args[0])
	}
	fmt.Fprintf(c.out, "Perspective for %s set to %s\n", args[0], seat)
	return nil
}

func (c *CLI) cmdRoom(verb string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <room>", verb)
	}
	if c.sender == nil {
		return fmt.Errorf("not connected")
	}
	if err := c.sender.Send("", "/"+verb+" "+args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Sent %s for %s\n", verb, args[0])
	return nil
}

func (c *CLI) cmdForget(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: forget <room>")
	}
	if !c.sessions.Forget(ctx, args[0]) {
		return fmt.Errorf("room %s is not tracked", args[0])
	}
	fmt.Fprintf(c.out, "Forgot %s\n", args[0])
	return nil
}
