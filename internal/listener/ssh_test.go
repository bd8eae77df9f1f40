package listener

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/ssh"
)

func TestSshListener_Session(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	logger, _ := test.NewNullLogger()
	cm := NewConnectionManager(&echoRunner{}, logger)
	l := NewSshListener(0, cm, signer, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	config := &ssh.ServerConfig{NoClientAuth: true}
	config.AddHostKey(signer)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.serve(ctx, ln, config) }()

	client, err := ssh.Dial("tcp", ln.Addr().String(), &ssh.ClientConfig{
		User:            "mapper",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		cancel()
		t.Fatalf("dialing: %v", err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout: %v", err)
	}
	if err := session.Shell(); err != nil {
		t.Fatalf("requesting shell: %v", err)
	}

	if _, err := stdin.Write([]byte("undo\r\n")); err != nil {
		t.Fatalf("writing: %v", err)
	}
	line, err := bufio.NewReader(stdout).ReadString('\n')
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	testutil.AssertEqual(t, "reply", line, "echo: undo\r\n")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("unexpected error from serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not shut down")
	}
}
