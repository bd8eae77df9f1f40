package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/display"
	"github.com/pixil98/go-mudmap/internal/gamemap"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

const defaultHistoryLimit = 10

func (h *Handler) registerCommands() {
	h.register(&command{name: "help", usage: "[command]", help: "List commands or describe one.", run: h.cmdHelp})
	h.register(&command{name: "stats", help: "Summarize the map and print world statistics.", run: h.cmdStats})
	h.register(&command{name: "room", usage: "<id>", help: "Show every field and connection of a room.", run: h.cmdRoom})
	h.register(&command{name: "preview", usage: "<id>", help: "Show a room the way a player would see it.", run: h.cmdPreview})
	h.register(&command{name: "diff", help: "Show what changed since the last save.", run: h.cmdDiff})
	h.register(&command{name: "unknown", help: "List rooms with exits in the unknown direction.", run: h.cmdUnknown})
	h.register(&command{name: "multi", help: "List rooms with exits leading to more than one room.", run: h.cmdMulti})
	h.register(&command{name: "check", help: "Run the full consistency check on the map.", run: h.cmdCheck})
	h.register(&command{name: "basemap", help: "Report how much of the map is reachable from the seed rooms.", run: h.cmdBaseMap})
	h.register(&command{name: "revert", usage: "<id>", help: "Restore a room to its saved version.", run: h.cmdRevert})
	h.register(&command{name: "undo", help: "Undo the last batch.", run: h.cmdUndo})
	h.register(&command{name: "redo", help: "Redo the last undone batch.", run: h.cmdRedo})
	h.register(&command{name: "save", help: "Write the map to the snapshot file.", run: h.cmdSave})
	h.register(&command{name: "apply", usage: "<json>", help: "Apply a change, or a JSON array of changes, as one batch.", run: h.cmdApply})
	h.register(&command{name: "quit", help: "End the session.", run: h.cmdQuit})
	if h.history != nil {
		h.register(&command{name: "history", usage: "[count]", help: "Show the most recent batches.", run: h.cmdHistory})
	}
	if h.areas != nil {
		h.register(&command{name: "import", usage: "[area] [x y z]", help: "Merge an area file into the map, optionally shifted by an offset.", run: h.cmdImport})
	}
}

func (h *Handler) cmdHelp(_ context.Context, s *session, args string) error {
	if args != "" {
		cmd, ok := h.commands[strings.ToLower(args)]
		if !ok {
			return NewUserError("No help for %q.", args)
		}
		return s.printf("%s\n", display.Wrap(fmt.Sprintf("%s %s\n    %s", cmd.name, cmd.usage, cmd.help)))
	}

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cmd := range h.sortedCommands() {
		line := fmt.Sprintf("  %-24s %s", strings.TrimSpace(cmd.name+" "+cmd.usage), cmd.help)
		sb.WriteString(display.Hanging(line, 27))
		sb.WriteString("\n")
	}
	return s.printf("%s", sb.String())
}

func (h *Handler) cmdStats(ctx context.Context, s *session, _ string) error {
	cur := h.mapper.Current()
	undo, redo := h.mapper.HistoryDepth()
	summary, err := ExpandTemplate(summaryTemplate, summaryData{
		Rooms: cur.NumRooms(),
		Marks: cur.NumMarks(),
		Dirty: h.mapper.Dirty(),
		Undo:  undo,
		Redo:  redo,
	})
	if err != nil {
		return err
	}
	if err := s.printf("%s\n", summary); err != nil {
		return err
	}
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	return cur.World().PrintStats(pc, s.out)
}

func parseRoomId(args string) (roomid.ExternalRoomId, error) {
	if args == "" {
		return roomid.InvalidExternalRoomId, NewUserError("Which room?")
	}
	n, err := strconv.ParseUint(args, 10, 32)
	if err != nil {
		return roomid.InvalidExternalRoomId, NewUserError("%q is not a room id.", args)
	}
	ext := roomid.ExternalRoomId(n)
	if !ext.IsValid() {
		return ext, NewUserError("%q is not a room id.", args)
	}
	return ext, nil
}

func (h *Handler) findRoom(args string) (gamemap.RoomHandle, error) {
	ext, err := parseRoomId(args)
	if err != nil {
		return gamemap.RoomHandle{}, err
	}
	room := h.mapper.Current().FindRoomHandleExternal(ext)
	if !room.Exists() {
		return gamemap.RoomHandle{}, NewUserError("Room %s does not exist.", ext)
	}
	return room, nil
}

func (h *Handler) cmdRoom(_ context.Context, s *session, args string) error {
	room, err := h.findRoom(args)
	if err != nil {
		return err
	}
	return room.Map().StatRoom(s.out, room.Id())
}

func (h *Handler) cmdPreview(_ context.Context, s *session, args string) error {
	room, err := h.findRoom(args)
	if err != nil {
		return err
	}
	return s.printf("%s\n", gamemap.PreviewRoomWithHeader(room))
}

func (h *Handler) cmdDiff(ctx context.Context, s *session, _ string) error {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	saved, cur := h.mapper.Saved(), h.mapper.Current()

	if saved.Equal(cur) {
		return s.printf("No changes since the last save.\n")
	}

	st, err := gamemap.GetBasicDiffStats(pc, saved, cur)
	if err != nil {
		return err
	}
	err = s.printf("Since the last save: %d added, %d removed, %d changed.\n\n",
		st.RoomsAdded, st.RoomsRemoved, st.RoomsChanged)
	if err != nil {
		return err
	}
	return gamemap.Diff(pc, s.out, saved, cur)
}

func (h *Handler) cmdUnknown(ctx context.Context, s *session, _ string) error {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	return h.mapper.Current().PrintUnknown(pc, s.out)
}

func (h *Handler) cmdMulti(ctx context.Context, s *session, _ string) error {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	return h.mapper.Current().PrintMulti(pc, s.out)
}

func (h *Handler) cmdCheck(ctx context.Context, s *session, _ string) error {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	if err := h.mapper.Current().CheckConsistency(pc); err != nil {
		s.logger.WithError(err).Warn("map failed consistency check")
		return NewUserError("The map is inconsistent: %v", err)
	}
	return s.printf("The map is consistent.\n")
}

func (h *Handler) cmdBaseMap(ctx context.Context, s *session, _ string) error {
	cur := h.mapper.Current()
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	base, err := cur.FilterBaseMap(pc, h.opts)
	if err != nil {
		return err
	}
	return s.printf("The base map keeps %d of %d rooms.\n", base.NumRooms(), cur.NumRooms())
}

func (h *Handler) cmdRevert(ctx context.Context, s *session, args string) error {
	room, err := h.findRoom(args)
	if err != nil {
		return err
	}

	ok, err := s.in.PromptYN(fmt.Sprintf("Revert room %s to its saved version? ", room.ExternalId()))
	if err != nil {
		return err
	}
	if !ok {
		return s.printf("Nothing reverted.\n")
	}

	u, ok, err := h.mapper.Revert(ctx, s.out, sessionSource, room.ExternalId())
	if err != nil || !ok {
		return err
	}
	return printUpdate(s, u)
}

func (h *Handler) cmdUndo(ctx context.Context, s *session, _ string) error {
	u, err := h.mapper.Undo(ctx, sessionSource)
	if err != nil {
		return err
	}
	return printUpdate(s, u)
}

func (h *Handler) cmdRedo(ctx context.Context, s *session, _ string) error {
	u, err := h.mapper.Redo(ctx, sessionSource)
	if err != nil {
		return err
	}
	return printUpdate(s, u)
}

func (h *Handler) cmdSave(ctx context.Context, s *session, _ string) error {
	if err := h.mapper.Save(ctx); err != nil {
		return err
	}
	return s.printf("Map saved.\n")
}

// parseChanges accepts a single change object or an array of them.
func parseChanges(args string) ([]change.Change, error) {
	if args == "" {
		return nil, NewUserError("Apply what? Give a change as JSON.")
	}

	if strings.HasPrefix(args, "[") {
		var list change.List
		if err := json.Unmarshal([]byte(args), &list); err != nil {
			return nil, NewUserError("Invalid changes: %v", err)
		}
		if len(list) == 0 {
			return nil, NewUserError("The batch is empty.")
		}
		return list, nil
	}

	c, err := change.Decode([]byte(args))
	if err != nil {
		return nil, NewUserError("Invalid change: %v", err)
	}
	return []change.Change{c}, nil
}

func (h *Handler) cmdApply(ctx context.Context, s *session, args string) error {
	changes, err := parseChanges(args)
	if err != nil {
		return err
	}

	if err := h.mapper.Current().PrintChanges(s.out, changes); err != nil {
		return err
	}

	u, err := h.mapper.Apply(ctx, sessionSource, changes)
	if err != nil {
		return err
	}
	return printUpdate(s, u)
}

func (h *Handler) cmdHistory(ctx context.Context, s *session, args string) error {
	limit := defaultHistoryLimit
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return NewUserError("%q is not a count.", args)
		}
		limit = n
	}

	records, err := h.history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	out, err := ExpandTemplate(historyTemplate, records)
	if err != nil {
		return err
	}
	return s.printf("%s", out)
}

func parseOffset(fields []string) (coordinate.Coordinate, error) {
	if len(fields) != 3 {
		return coordinate.Coordinate{}, NewUserError("An offset needs three numbers: x y z.")
	}
	var v [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return coordinate.Coordinate{}, NewUserError("%q is not a number.", f)
		}
		v[i] = n
	}
	return coordinate.New(v[0], v[1], v[2]), nil
}

func (h *Handler) cmdImport(ctx context.Context, s *session, args string) error {
	h.areas.Refresh()
	if h.areas.Len() == 0 {
		return NewUserError("There are no area files to import.")
	}

	fields := strings.Fields(args)
	var id string
	if len(fields) > 0 {
		var ok bool
		if id, ok = h.areas.Lookup(fields[0]); !ok {
			return NewUserError("There is no area %q.", fields[0])
		}
		fields = fields[1:]
	} else {
		if err := s.printf("%s\n", strings.Join(h.areas.Menu(), "\n")); err != nil {
			return err
		}
		input, err := s.in.Prompt("Import which area? ", WithMaxTries(3), WithValidator(func(str string) (bool, string) {
			if _, ok := h.areas.Lookup(str); !ok {
				return false, "Pick a number or an area id from the list.\n"
			}
			return true, ""
		}))
		if err != nil {
			return err
		}
		id, _ = h.areas.Lookup(input)
	}

	var offset coordinate.Coordinate
	if len(fields) > 0 {
		var err error
		if offset, err = parseOffset(fields); err != nil {
			return err
		}
	}

	area := h.areas.Get(id)
	if area == nil {
		return NewUserError("There is no area %q.", id)
	}

	u, err := h.mapper.Merge(ctx, sessionSource, area, offset)
	if err != nil {
		return err
	}
	return printUpdate(s, u)
}

func (h *Handler) cmdQuit(_ context.Context, s *session, _ string) error {
	s.quit = true
	return nil
}

func printUpdate(s *session, u mapper.Update) error {
	out, err := ExpandTemplate(updateTemplate, updateData{
		Action:  string(u.Action),
		Batch:   u.Batch.String(),
		Changes: u.Changes,
		Rooms:   u.Rooms,
		Flags:   u.Flags.Names(),
	})
	if err != nil {
		return err
	}
	return s.printf("%s", out)
}
