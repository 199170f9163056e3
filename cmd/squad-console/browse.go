package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/0xmhha/squad-console/pkg/config"
	"github.com/0xmhha/squad-console/pkg/display"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/query"
	"github.com/0xmhha/squad-console/pkg/watcher"
)

// keyKind classifies decoded terminal input.
type keyKind int

const (
	keyRune keyKind = iota
	keyBackspace
	keyClear
	keyNextPage
	keyPrevPage
	keyRefresh
	keyQuit
)

type key struct {
	kind keyKind
	r    rune
}

// decodeKeys splits one raw-mode read into keys.
func decodeKeys(b []byte) []key {
	var keys []key
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == 0x1b:
			if i+2 < len(b) && b[i+1] == '[' {
				switch b[i+2] {
				case 'C':
					keys = append(keys, key{kind: keyNextPage})
				case 'D':
					keys = append(keys, key{kind: keyPrevPage})
				}
				i += 3
				continue
			}
			keys = append(keys, key{kind: keyQuit})
			i++
		case c == 0x03 || c == 0x04:
			keys = append(keys, key{kind: keyQuit})
			i++
		case c == 0x12 || c == '\r' || c == '\n':
			keys = append(keys, key{kind: keyRefresh})
			i++
		case c == 0x15:
			keys = append(keys, key{kind: keyClear})
			i++
		case c == 0x7f || c == 0x08:
			keys = append(keys, key{kind: keyBackspace})
			i++
		case c < 0x20:
			i++
		default:
			r, size := utf8.DecodeRune(b[i:])
			if r != utf8.RuneError {
				keys = append(keys, key{kind: keyRune, r: r})
			}
			i += size
		}
	}
	return keys
}

// crlfWriter translates \n to \r\n for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// browseScreen is what one redraw shows.
type browseScreen[T model.Entity] struct {
	title  string
	input  string
	status string
}

// draw renders the screen for st.
func (s browseScreen[T]) draw(w io.Writer, f display.Formatter, render func(display.Formatter, io.Writer, []T) error, st query.State[T]) error {
	var buf bytes.Buffer

	buf.WriteString("\033[2J\033[H")
	fmt.Fprintf(&buf, "%s  (type to search, ←/→ page, Enter refresh, Esc quit)\n", s.title)

	indicator := ""
	switch {
	case st.IsSearching:
		indicator = "  searching..."
	case st.Loading:
		indicator = "  loading..."
	}
	fmt.Fprintf(&buf, "Search: %s_%s\n\n", s.input, indicator)

	if err := render(f, &buf, st.Items); err != nil {
		return err
	}
	if st.Pagination != nil {
		if err := f.FormatPagination(&buf, *st.Pagination); err != nil {
			return err
		}
	}
	if err := f.FormatStats(&buf, st.Stats); err != nil {
		return err
	}
	if st.Err != "" {
		fmt.Fprintf(&buf, "\nError: %s (Enter to retry)\n", st.Err)
	}
	if s.status != "" {
		fmt.Fprintf(&buf, "\n%s\n", s.status)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// browse runs the interactive search screen until the user quits.
func (c *resourceCommand[T, D]) browse(ctx context.Context, a *app, lf listFlags) error {
	if !a.prompt.interactive() {
		return errors.New("browse needs an interactive terminal; use list instead")
	}

	ctrl := c.controller(ctx, a, lf)
	defer ctrl.Close()
	ctrl.Refresh()

	events, errs, stopWatch := a.watchConfig(ctx)
	defer stopWatch()

	oldState, err := term.MakeRaw(a.prompt.fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(a.prompt.fd, oldState) // nolint:errcheck
		a.printf("\n")
	}()

	keys := a.prompt.keys()

	out := crlfWriter{w: a.out}
	screen := browseScreen[T]{title: c.route, input: lf.search}
	redraw := func() error {
		return screen.draw(out, a.format, c.render, ctrl.State())
	}
	if err := redraw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ctrl.Changed():

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.log.SetLevel(ev.Config.Logging.Level)
			ctrl.SetDebounce(ev.Config.Query.DebounceInterval)
			screen.status = "Configuration reloaded"

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			screen.status = "Configuration not reloaded: " + err.Error()

		case chunk, ok := <-keys:
			if !ok {
				return nil
			}
			for _, k := range decodeKeys(chunk) {
				switch k.kind {
				case keyQuit:
					return nil
				case keyRune:
					screen.input += string(k.r)
					ctrl.SetSearchTerm(screen.input)
				case keyBackspace:
					if screen.input != "" {
						_, size := utf8.DecodeLastRuneInString(screen.input)
						screen.input = screen.input[:len(screen.input)-size]
						ctrl.SetSearchTerm(screen.input)
					}
				case keyClear:
					screen.input = ""
					ctrl.SetSearchTerm("")
				case keyNextPage:
					ctrl.NextPage()
				case keyPrevPage:
					ctrl.PrevPage()
				case keyRefresh:
					ctrl.Refresh()
				}
			}
		}

		if err := redraw(); err != nil {
			return err
		}
	}
}

// watchConfig reloads the configuration file while a screen is open.
// Both channels are nil when watching is unavailable.
func (a *app) watchConfig(ctx context.Context) (<-chan watcher.Event, <-chan error, func()) {
	w, err := watcher.New(watcher.Config{}, config.LoadFromFile, a.log)
	if err != nil {
		a.log.Debug("config watcher unavailable", "error", err)
		return nil, nil, func() {}
	}
	if err := w.Start(ctx, a.configPath); err != nil {
		a.log.Debug("config watcher not started", "path", a.configPath, "error", err)
		_ = w.Close() // nolint:errcheck
		return nil, nil, func() {}
	}

	stop := func() {
		if err := w.Close(); err != nil {
			a.log.Warn("failed to close config watcher", "error", err)
		}
	}
	return w.Events(), w.Errors(), stop
}
