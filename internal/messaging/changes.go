package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	SubjectApply   = "mudmap.apply"
	SubjectUpdated = "mudmap.updated"

	defaultSource = "nats"
)

// Applier is the single writer of the map.
type Applier interface {
	Apply(ctx context.Context, source string, changes []change.Change) (mapper.Update, error)
	Subscribe(func(mapper.Update))
}

// Bus is the subset of NatsServer the change service needs.
type Bus interface {
	Ready() <-chan struct{}
	Respond(subject string, handler func([]byte) []byte) (func(), error)
	Publish(subject string, data []byte) error
}

// ApplyRequest is the body of a SubjectApply request.
type ApplyRequest struct {
	Source  string      `json:"source,omitempty"`
	Changes change.List `json:"changes"`
}

// ApplyReply answers an ApplyRequest. Error is set instead of the other
// fields when the batch was rejected.
type ApplyReply struct {
	Batch string   `json:"batch,omitempty"`
	Flags []string `json:"flags,omitempty"`
	Rooms int      `json:"rooms,omitempty"`
	Error string   `json:"error,omitempty"`
}

// UpdateEvent is broadcast on SubjectUpdated after every committed batch,
// whatever its source.
type UpdateEvent struct {
	Batch   string   `json:"batch"`
	Action  string   `json:"action"`
	Source  string   `json:"source,omitempty"`
	Flags   []string `json:"flags,omitempty"`
	Changes int      `json:"changes"`
	Rooms   int      `json:"rooms"`
}

// ChangeService accepts change batches over NATS and broadcasts map updates.
type ChangeService struct {
	bus     Bus
	applier Applier
	schema  *jsonschema.Schema
}

func NewChangeService(bus Bus, applier Applier) (*ChangeService, error) {
	schema, err := compileApplySchema()
	if err != nil {
		return nil, err
	}
	return &ChangeService{bus: bus, applier: applier, schema: schema}, nil
}

// compileApplySchema builds the request schema from the registered change
// names so new variants are accepted without editing a schema file.
func compileApplySchema() (*jsonschema.Schema, error) {
	names := change.Names()
	sort.Strings(names)

	doc := map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"changes"},
		"properties": map[string]any{
			"source": map[string]any{"type": "string", "maxLength": 64},
			"changes": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"type"},
					"properties": map[string]any{
						"type": map[string]any{"enum": names},
					},
				},
			},
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding apply schema: %w", err)
	}

	schema, err := jsonschema.CompileString("mudmap-apply.schema.json", string(b))
	if err != nil {
		return nil, fmt.Errorf("compiling apply schema: %w", err)
	}
	return schema, nil
}

func (s *ChangeService) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-s.bus.Ready():
	}

	s.applier.Subscribe(s.publishUpdate)

	unsubscribe, err := s.bus.Respond(SubjectApply, func(data []byte) []byte {
		return s.handle(ctx, data)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", SubjectApply, err)
	}
	slog.InfoContext(ctx, "accepting change batches", "subject", SubjectApply)

	<-ctx.Done()
	unsubscribe()
	return nil
}

func (s *ChangeService) handle(ctx context.Context, data []byte) []byte {
	reply := s.apply(ctx, data)
	b, err := json.Marshal(reply)
	if err != nil {
		slog.ErrorContext(ctx, "encoding apply reply", "error", err)
		return []byte(`{"error":"internal error"}`)
	}
	return b
}

func (s *ChangeService) apply(ctx context.Context, data []byte) ApplyReply {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return ApplyReply{Error: fmt.Sprintf("invalid json: %v", err)}
	}
	if err := s.schema.Validate(doc); err != nil {
		return ApplyReply{Error: fmt.Sprintf("invalid request: %v", err)}
	}

	var req ApplyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ApplyReply{Error: fmt.Sprintf("invalid changes: %v", err)}
	}
	source := req.Source
	if source == "" {
		source = defaultSource
	}

	u, err := s.applier.Apply(ctx, source, req.Changes)
	if err != nil {
		slog.WarnContext(ctx, "rejected change batch", "source", source, "error", err)
		return ApplyReply{Error: err.Error()}
	}

	return ApplyReply{
		Batch: u.Batch.String(),
		Flags: u.Flags.Names(),
		Rooms: u.Rooms,
	}
}

func (s *ChangeService) publishUpdate(u mapper.Update) {
	b, err := json.Marshal(UpdateEvent{
		Batch:   u.Batch.String(),
		Action:  string(u.Action),
		Source:  u.Source,
		Flags:   u.Flags.Names(),
		Changes: u.Changes,
		Rooms:   u.Rooms,
	})
	if err != nil {
		slog.Error("encoding update event", "error", err)
		return
	}
	if err := s.bus.Publish(SubjectUpdated, b); err != nil {
		slog.Warn("failed to publish update", "batch", u.Batch, "error", err)
	}
}
