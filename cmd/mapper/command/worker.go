package command

import (
	"context"
	"fmt"
	"io"

	"github.com/pixil98/go-mudmap/internal/console"
	"github.com/pixil98/go-mudmap/internal/driver"
	"github.com/pixil98/go-mudmap/internal/listener"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/pixil98/go-mudmap/internal/messaging"
	"github.com/pixil98/go-mudmap/internal/storage"
	"github.com/pixil98/go-service"
	"github.com/sirupsen/logrus"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	logger := logrus.StandardLogger()

	// Open storage
	areas, err := cfg.Storage.Areas.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating area store: %w", err)
	}
	history, err := cfg.Storage.buildHistory()
	if err != nil {
		return nil, err
	}

	// Create the map manager and load the saved map
	opts, err := cfg.Mapper.managerOpts()
	if err != nil {
		return nil, err
	}
	opts = append(opts, mapper.WithSnapshots(cfg.Storage.buildSnapshots()))
	if j := cfg.Storage.buildJournal(); j != nil {
		opts = append(opts, mapper.WithJournal(j))
	}
	if history != nil {
		opts = append(opts, mapper.WithHistory(history))
	}
	mgr := mapper.NewManager(opts...)

	if err := mgr.Load(context.Background(), areas.GetAll()); err != nil {
		return nil, fmt.Errorf("loading map: %w", err)
	}

	// Accept change batches over nats
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	changes, err := messaging.NewChangeService(nats, mgr)
	if err != nil {
		return nil, fmt.Errorf("creating change service: %w", err)
	}

	// Create the console and its listeners
	handlerOpts := []console.HandlerOpt{
		console.WithAreas(storage.NewSelectableStorer[*storage.AreaSpec](areas)),
		console.WithApplyOptions(cfg.Mapper.applyOptions()),
	}
	if history != nil {
		handlerOpts = append(handlerOpts, console.WithHistory(history))
	}
	cm := listener.NewConnectionManager(console.NewHandler(mgr, handlerOpts...), logger)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm, logger)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	// Setup the driver
	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, err
	}
	drv := driver.NewDriver([]driver.Manager{mgr}, driver.WithTickLength(tick))

	workers := service.WorkerList{
		"mapper":    mgr,
		"nats":      nats,
		"changes":   changes,
		"driver":    drv,
		"listeners": &listeners,
	}
	if history != nil {
		workers["history"] = closeOnStop{history}
	}
	return workers, nil
}

// closeOnStop closes c when the service shuts down.
type closeOnStop struct {
	c io.Closer
}

func (w closeOnStop) Start(ctx context.Context) error {
	<-ctx.Done()
	return w.c.Close()
}
