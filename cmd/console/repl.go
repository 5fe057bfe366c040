package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vinayprograms/scriptconsole/internal/console"
	"github.com/vinayprograms/scriptconsole/internal/session"
)

const (
	prompt       = "> "
	continuation = ". "
)

const replHelp = `Meta commands:
  :clear     Clear the view
  :reset     Clear the view and drop all globals
  :sync N    Print the raw entries from index N on
  :info      Show session details
  :quit      Leave the console
End a line with \ to continue input on the next line.`

// Run starts the interactive console on stdin.
func (c *ReplCmd) Run(cli *CLI) error {
	ctx := context.Background()
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.repl(ctx, c.Name, stdin, isTerminal(stdin))
}

// repl evaluates input line by line until EOF or :quit.
func (a *app) repl(ctx context.Context, name string, in io.Reader, interactive bool) error {
	sess, _, err := a.startSession(name)
	if err != nil {
		return err
	}

	show := func(p string) {
		if interactive {
			fmt.Fprint(a.out, p)
		}
	}

	sc := bufio.NewScanner(in)
	var pending strings.Builder
	show(prompt)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteByte('\n')
			show(continuation)
			continue
		}
		pending.WriteString(line)
		input := pending.String()
		pending.Reset()

		if quit := a.handle(ctx, sess, input); quit {
			return nil
		}
		show(prompt)
	}
	return sc.Err()
}

// handle runs one unit of input. It reports whether the console should
// exit.
func (a *app) handle(ctx context.Context, sess *session.Session, input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if !strings.HasPrefix(trimmed, ":") {
		sess.Evaluate(ctx, input)
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":clear":
		sess.Engine().ClearOutput()
	case ":reset":
		if err := sess.Reset(); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	case ":sync":
		start := 0
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(a.out, "error: invalid index %q\n", fields[1])
				return false
			}
			start = n
		}
		dumpMessages(a.out, sess.Engine(), start)
	case ":info":
		info := sess.Info()
		fmt.Fprintf(a.out, "session %s (%s): %d messages, %d evaluations\n",
			info.ID, info.Name, info.Messages, info.Evaluations)
	case ":help":
		fmt.Fprintln(a.out, replHelp)
	default:
		fmt.Fprintf(a.out, "unknown command %s (try :help)\n", fields[0])
	}
	return false
}

// dumpMessages prints the raw entries from start on, one per line.
func dumpMessages(w io.Writer, engine *console.Engine, start int) {
	for {
		first, kinds, data := engine.Messages(start)
		if len(kinds) == 0 {
			return
		}
		for i, kind := range kinds {
			fmt.Fprintf(w, "%d\t%s\t%s\n", first+i, kind, data[i])
		}
		start = first + len(kinds)
	}
}
