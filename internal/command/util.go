package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"golang.org/x/term"

	"github.com/stolasapp/tally/internal/config"
	"github.com/stolasapp/tally/internal/storage"
)

type configKey struct{}

// terminal prompts the operator for input.
type terminal struct {
	in  *os.File
	out io.Writer
}

var stdio = terminal{in: os.Stdin, out: os.Stderr}

func prompt(msg string, mask bool) ([]byte, error) {
	return stdio.prompt(msg, mask)
}

func confirm(msg string) (bool, error) {
	return stdio.confirm(msg)
}

func (t terminal) interactive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// prompt reads a line. The prompt is only shown on a terminal; masked input
// is only hidden there.
func (t terminal) prompt(msg string, mask bool) ([]byte, error) {
	if !t.interactive() {
		return readLine(t.in)
	}
	if _, err := io.WriteString(t.out, msg); err != nil {
		return nil, err
	}
	if mask {
		line, err := term.ReadPassword(int(t.in.Fd()))
		_, _ = io.WriteString(t.out, "\n")
		return line, err
	}
	return readLine(t.in)
}

// confirm reports whether the operator answered "y".
func (t terminal) confirm(msg string) (bool, error) {
	resp, err := t.prompt(msg+" [y|N] ", false)
	if err != nil {
		return false, err
	}
	return bytes.EqualFold(bytes.TrimSpace(resp), []byte("y")), nil
}

// readLine reads up to the end of the line, one byte at a time so that
// nothing past the line is consumed. Carriage returns are dropped.
func readLine(r io.Reader) ([]byte, error) {
	var buf [1]byte
	var ret []byte

	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				return ret, nil
			case '\r':
			default:
				ret = append(ret, buf[0])
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}

func loadConfig(ctx context.Context) (*config.Config, *slog.Logger, storage.Store, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, nil, nil, errors.New("config file resolution failed")
	}
	logger := slog.Default()
	store, err := storage.NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, store, nil
}
