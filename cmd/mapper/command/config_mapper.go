package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/pixil98/go-mudmap/internal/world"
)

// MapperConfig tunes the map engine. Every field is optional.
type MapperConfig struct {
	// SeedRooms name the rooms a generated base map grows from.
	SeedRooms []string `json:"seed_rooms,omitempty"`
	// CheckConsistency verifies the whole map after every batch when set,
	// and only on ticks when not.
	CheckConsistency bool   `json:"check_consistency"`
	AutosaveInterval string `json:"autosave_interval,omitempty"`
	MaxUndo          int    `json:"max_undo,omitempty"`
}

func (c *MapperConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := c.autosaveInterval(); err != nil {
		el.Add(err)
	}
	if c.MaxUndo < 0 {
		el.Add(fmt.Errorf("max_undo must not be negative"))
	}
	for i, name := range c.SeedRooms {
		if name == "" {
			el.Add(fmt.Errorf("seed_rooms %d: name must be set", i))
		}
	}

	return el.Err()
}

func (c *MapperConfig) autosaveInterval() (time.Duration, error) {
	if c.AutosaveInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing autosave_interval: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("autosave_interval must be at least 1 second")
	}
	return d, nil
}

func (c *MapperConfig) applyOptions() world.ApplyOptions {
	opts := world.DefaultApplyOptions()
	opts.CheckConsistency = c.CheckConsistency
	if len(c.SeedRooms) > 0 {
		opts.BaseMap.SeedNames = c.SeedRooms
	}
	return opts
}

// managerOpts translates the config into options for mapper.NewManager.
// Storage is added by the caller.
func (c *MapperConfig) managerOpts() ([]mapper.ManagerOpt, error) {
	opts := []mapper.ManagerOpt{
		mapper.WithApplyOptions(c.applyOptions()),
		mapper.WithConsistencyCheck(!c.CheckConsistency),
	}

	d, err := c.autosaveInterval()
	if err != nil {
		return nil, err
	}
	if d > 0 {
		opts = append(opts, mapper.WithAutosave(d))
	}
	if c.MaxUndo > 0 {
		opts = append(opts, mapper.WithMaxUndo(c.MaxUndo))
	}
	return opts, nil
}
