package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
	"github.com/sirupsen/logrus"
)

const protocolTelnet = "telnet"

type TelnetListener struct {
	port   uint16
	cm     *ConnectionManager
	logger logrus.FieldLogger
}

func NewTelnetListener(port uint16, cm *ConnectionManager, logger logrus.FieldLogger) *TelnetListener {
	return &TelnetListener{
		port:   port,
		cm:     cm,
		logger: logger.WithField("listener", protocolTelnet),
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Sessions outlive the accept loop until Stop cancels them together.
	connCtx, cancelConns := context.WithCancel(context.Background())

	handler := &telnetHandler{
		cm:          l.cm,
		logger:      l.logger,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	l.logger.WithField("port", l.port).Info("listening for telnet")

	err := svr.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		handler.Stop()
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cm          *ConnectionManager
	logger      logrus.FieldLogger
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		if err := conn.Close(); err != nil {
			h.logger.WithError(err).Error("closing telnet connection")
		}
	}()

	h.cm.AcceptConnection(h.connCtx, conn, protocolTelnet, "")
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
