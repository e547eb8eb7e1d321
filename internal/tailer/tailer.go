// Package tailer follows a growing server log, like tail -F.
package tailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nxadm/tail"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the existing content before following. Otherwise
	// only lines appended after New are delivered.
	FromStart bool
	// ReOpen keeps following across truncation and rotation.
	ReOpen bool
	// Poll uses polling instead of inotify, for network filesystems.
	Poll bool
	// MaxLineSize splits longer lines; 0 means no limit.
	MaxLineSize int
	Logger      *slog.Logger
}

// DefaultConfig follows from the end of the file and reopens it when the
// server rotates or truncates it.
func DefaultConfig() Config {
	return Config{ReOpen: true}
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Line is one line read from the followed file. Number counts lines
// delivered by this Tailer, starting at 1, across reopens. Offset is the
// position in the file just past the line; it starts over when the file is
// truncated or replaced.
type Line struct {
	Number int
	Text   string
	Offset int64
}

// Tailer delivers the lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	log    *slog.Logger
	lines  chan Line
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New starts following path. The file must exist.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tcfg := tail.Config{
		Follow:      true,
		ReOpen:      cfg.ReOpen,
		MustExist:   true,
		Poll:        cfg.Poll,
		MaxLineSize: cfg.MaxLineSize,
		Logger:      tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tcfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tcfg)
	if err != nil {
		return nil, fmt.Errorf("tailing %s: %w", path, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		log:    logger,
		lines:  make(chan Line),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case l, ok := <-tl.t.Lines:
			if !ok {
				if err := tl.t.Err(); err != nil {
					tl.sendError(ctx, err)
				}
				return
			}
			if l.Err != nil {
				tl.log.Warn("tail error", "error", l.Err)
				tl.sendError(ctx, l.Err)
				continue
			}
			n++
			select {
			case tl.lines <- Line{Number: n, Text: l.Text, Offset: l.SeekInfo.Offset}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// sendError delivers err unless the consumer is gone.
func (tl *Tailer) sendError(ctx context.Context, err error) {
	select {
	case tl.errs <- err:
	case <-ctx.Done():
	}
}

// Lines returns the channel of lines. It is closed when the Tailer stops.
func (tl *Tailer) Lines() <-chan Line {
	return tl.lines
}

// Errors returns the channel of read errors. It is closed when the Tailer
// stops.
func (tl *Tailer) Errors() <-chan error {
	return tl.errs
}

// Stop stops following and releases the file. Safe to call multiple times.
func (tl *Tailer) Stop() error {
	var err error
	tl.once.Do(func() {
		tl.cancel()
		err = tl.t.Stop()
		tl.t.Cleanup()
		<-tl.done
	})
	return err
}
