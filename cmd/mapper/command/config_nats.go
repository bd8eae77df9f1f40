package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmap/internal/messaging"
)

// NatsConfig configures the embedded broker that carries change batches
// from mapper clients. A port of -1 picks a free port.
type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := n.startTimeout(); err != nil {
		el.Add(err)
	}
	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats port %d out of range", n.Port))
	}

	return el.Err()
}

func (n *NatsConfig) startTimeout() (time.Duration, error) {
	if n.StartTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(n.StartTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing start_timeout: %w", err)
	}
	return d, nil
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt

	d, err := n.startTimeout()
	if err != nil {
		return nil, err
	}
	if d > 0 {
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	return messaging.NewNatsServer(opts...)
}
