package listener

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const protocolSsh = "ssh"

type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
	logger  logrus.FieldLogger
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer, logger logrus.FieldLogger) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
		logger:  logger.WithField("listener", protocolSsh),
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	return l.serve(ctx, ln, config)
}

func (l *SshListener) serve(ctx context.Context, ln net.Listener, config *ssh.ServerConfig) error {
	l.logger.WithField("addr", ln.Addr().String()).Info("listening for ssh")

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			l.logger.WithError(err).Error("accepting ssh connection")
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logger := l.logger.WithField("remote", remote)

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		logger.WithError(err).Warn("ssh handshake failed")
		return
	}
	defer sshConn.Close()

	logger.WithField("user", sshConn.User()).Debug("ssh connection established")

	// Closing the connection ends the channel loop below.
	go func() {
		<-ctx.Done()
		_ = sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			logger.WithError(err).Warn("accepting ssh channel")
			continue
		}

		// Clients only forward input once the shell request is answered.
		shellReady := make(chan struct{})
		go func(in <-chan *ssh.Request) {
			started := false
			for req := range in {
				switch req.Type {
				case "pty-req":
					// Without a pty the client keeps local echo and line editing.
					_ = req.Reply(false, nil)
				case "shell":
					_ = req.Reply(!started, nil)
					if !started {
						started = true
						close(shellReady)
					}
				default:
					_ = req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-shellReady:
		case <-ctx.Done():
			_ = ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFReadWriter(ch), protocolSsh, remote)
		_ = ch.Close()
	}
}
