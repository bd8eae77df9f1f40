package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	protocolWebsocket = "websocket"

	wsPath         = "/console"
	wsWriteTimeout = 5 * time.Second
	wsIdleTimeout  = 30 * time.Minute
)

// WebsocketListener serves consoles over WebSocket text frames. Every
// inbound frame is one input line; every write is sent as one frame.
type WebsocketListener struct {
	port     uint16
	cm       *ConnectionManager
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWebsocketListener(port uint16, cm *ConnectionManager, logger logrus.FieldLogger) *WebsocketListener {
	return &WebsocketListener{
		port:   port,
		cm:     cm,
		logger: logger.WithField("listener", protocolWebsocket),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	return l.serve(ctx, ln)
}

func (l *WebsocketListener) serve(ctx context.Context, ln net.Listener) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, func(rw http.ResponseWriter, r *http.Request) {
		wg.Add(1)
		defer wg.Done()
		l.handle(connCtx, rw, r)
	})
	svr := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Hijacked connections are not tracked by Shutdown.
		cancelConns()
		_ = svr.Shutdown(shutdownCtx)
	}()

	l.logger.WithField("addr", ln.Addr().String()).Info("listening for websocket")

	err := svr.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		wg.Wait()
		return nil
	}
	cancelConns()
	return fmt.Errorf("serving websocket: %w", err)
}

func (l *WebsocketListener) handle(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		l.logger.WithError(err).WithField("remote", r.RemoteAddr).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ws := &wsReadWriter{conn: conn}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	l.cm.AcceptConnection(ctx, ws, protocolWebsocket, r.RemoteAddr)
}

// wsReadWriter presents a websocket connection as a line stream.
type wsReadWriter struct {
	conn *websocket.Conn
	buf  []byte

	writeMu sync.Mutex
}

func (w *wsReadWriter) Read(p []byte) (int, error) {
	for len(w.buf) == 0 {
		_ = w.conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		typ, msg, err := w.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return 0, io.EOF
			}
			return 0, err
		}
		if typ != websocket.TextMessage {
			continue
		}
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg = append(msg, '\n')
		}
		w.buf = msg
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsReadWriter) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
