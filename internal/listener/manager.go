package listener

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionRunner drives one interactive console over a connection.
type SessionRunner interface {
	RunSession(ctx context.Context, rw io.ReadWriter, logger logrus.FieldLogger) error
}

// ConnectionManager hands accepted connections from every listener to the
// console and tracks how many sessions are open.
type ConnectionManager struct {
	runner SessionRunner
	logger logrus.FieldLogger
	active atomic.Int64
}

func NewConnectionManager(runner SessionRunner, logger logrus.FieldLogger) *ConnectionManager {
	return &ConnectionManager{
		runner: runner,
		logger: logger,
	}
}

// AcceptConnection runs a session on conn and blocks until it ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, protocol string, remote string) {
	logger := m.logger.WithFields(logrus.Fields{
		"protocol": protocol,
		"remote":   remote,
		"session":  uuid.NewString(),
	})

	m.active.Add(1)
	defer m.active.Add(-1)

	logger.Info("session started")
	err := m.runner.RunSession(ctx, conn, logger)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		logger.Info("session ended")
	default:
		logger.WithError(err).Warn("session ended with error")
	}
}

// Active returns the number of open sessions.
func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}
