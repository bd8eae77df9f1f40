// Package console implements the line based command interface served to
// telnet, ssh and websocket sessions.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/display"
	"github.com/pixil98/go-mudmap/internal/gamemap"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/storage"
	"github.com/pixil98/go-mudmap/internal/world"
	"github.com/sirupsen/logrus"
)

const (
	sessionSource = "console"
	promptText    = "> "
)

// Mapper is the part of mapper.Manager the console drives.
type Mapper interface {
	Current() gamemap.Map
	Saved() gamemap.Map
	Dirty() bool
	HistoryDepth() (int, int)
	Apply(ctx context.Context, source string, changes []change.Change) (mapper.Update, error)
	Undo(ctx context.Context, source string) (mapper.Update, error)
	Redo(ctx context.Context, source string) (mapper.Update, error)
	Revert(ctx context.Context, out io.Writer, source string, ext roomid.ExternalRoomId) (mapper.Update, bool, error)
	Merge(ctx context.Context, source string, area *storage.AreaSpec, offset coordinate.Coordinate) (mapper.Update, error)
	Save(ctx context.Context) error
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]storage.HistoryRecord, error)
}

// AreaCatalog lists the area files that can be imported.
type AreaCatalog interface {
	Refresh()
	Len() int
	Menu() []string
	Lookup(input string) (string, bool)
	Get(id string) *storage.AreaSpec
}

type commandFunc func(ctx context.Context, s *session, args string) error

type command struct {
	name  string
	usage string
	help  string
	run   commandFunc
}

type Handler struct {
	mapper  Mapper
	areas   AreaCatalog
	history HistoryReader
	opts    world.ApplyOptions

	commands map[string]*command
}

func NewHandler(m Mapper, opts ...HandlerOpt) *Handler {
	h := &Handler{
		mapper:   m,
		opts:     world.DefaultApplyOptions(),
		commands: make(map[string]*command),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerCommands()
	return h
}

func (h *Handler) register(c *command) {
	h.commands[c.name] = c
}

func (h *Handler) sortedCommands() []*command {
	cmds := make([]*command, 0, len(h.commands))
	for _, c := range h.commands {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	return cmds
}

type session struct {
	out    io.Writer
	in     *prompter
	logger logrus.FieldLogger
	quit   bool
}

func (s *session) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.out, format, args...)
	return err
}

// RunSession reads commands from rw until the user quits or the connection
// closes.
func (h *Handler) RunSession(ctx context.Context, rw io.ReadWriter, logger logrus.FieldLogger) error {
	s := &session{
		out:    rw,
		in:     newPrompter(rw),
		logger: logger,
	}

	if err := s.printf("Connected to the map. Type 'help' for a list of commands.\n"); err != nil {
		return err
	}

	for {
		if err := s.printf(promptText); err != nil {
			return err
		}

		line, err := s.in.ReadLine()
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		err = h.Exec(ctx, s, line)
		if err != nil {
			var userErr *UserError
			if !errors.As(err, &userErr) {
				logger.WithError(err).WithField("command", line).Error("command failed")
				userErr = NewUserError("Command failed: %v", err)
			}
			if err := s.printf("%s\n", userErr.Message); err != nil {
				return err
			}
		}

		if s.quit {
			return s.printf("Goodbye!\n")
		}
	}
}

// Exec runs one command line.
func (h *Handler) Exec(ctx context.Context, s *session, line string) error {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd, ok := h.commands[strings.ToLower(name)]
	if !ok {
		return NewUserError("Unknown command %q. Type 'help' for a list of commands.", name)
	}

	s.logger.WithField("command", cmd.name).Debug("running command")
	return userFacing(cmd.run(ctx, s, strings.TrimSpace(args)))
}

// userFacing turns errors that describe a refused request into UserErrors.
func userFacing(err error) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	var invalid *world.InvalidMapOperation
	switch {
	case errors.Is(err, mapper.ErrNothingToUndo),
		errors.Is(err, mapper.ErrNothingToRedo),
		errors.Is(err, mapper.ErrNoChanges),
		errors.Is(err, gamemap.ErrNothingToMerge),
		errors.Is(err, ErrTooManyTries):
		return NewUserError("%s.", display.Capitalize(err.Error()))
	case errors.As(err, &invalid):
		return NewUserError("The map refused the change: %s.", invalid.Error())
	}
	return err
}
