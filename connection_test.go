package amqpwire

import (
	"bytes"
	"net"
	"testing"
	"time"
)

// fakeServerConn drives one side of a net.Pipe as a minimal AMQP 0-9-1
// server for exercising Open's handshake: it reads the protocol header and
// StartOk/TuneOk/Open and writes back Start/Tune/OpenOk.
type fakeServerConn struct {
	t    *testing.T
	conn net.Conn
}

func (s *fakeServerConn) readFrame() Frame {
	s.t.Helper()
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := s.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			f, rest, ferr := unpackFrame(buf)
			if ferr == errIncomplete {
				continue
			}
			if ferr != nil {
				s.t.Fatalf("server: bad frame: %v", ferr)
			}
			_ = rest
			return f
		}
		if err != nil {
			s.t.Fatalf("server: read: %v", err)
		}
	}
}

func (s *fakeServerConn) readProtocolHeader() {
	s.t.Helper()
	buf := make([]byte, 8)
	if _, err := readFull(s.conn, buf); err != nil {
		s.t.Fatalf("server: read protocol header: %v", err)
	}
	if !bytes.Equal(buf, DefaultProtocolHeader().pack()) {
		s.t.Fatalf("server: unexpected protocol header: %v", buf)
	}
}

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *fakeServerConn) writeMethod(channel uint16, m Method) {
	s.t.Helper()
	f, err := packMethodFrame(channel, m)
	if err != nil {
		s.t.Fatalf("server: pack %T: %v", m, err)
	}
	if _, err := s.conn.Write(f.pack()); err != nil {
		s.t.Fatalf("server: write %T: %v", m, err)
	}
}

// runHandshakeServer performs the standard happy-path AMQP 0-9-1 negotiation
// over conn: Start -> (client StartOk) -> Tune -> (client TuneOk, Open) ->
// OpenOk. It returns once OpenOk has been written.
func runHandshakeServer(t *testing.T, conn net.Conn) {
	t.Helper()
	s := &fakeServerConn{t: t, conn: conn}
	s.readProtocolHeader()
	s.writeMethod(0, &ConnectionStart{VersionMajor: 0, VersionMinor: 9, Mechanisms: "PLAIN", Locales: "en_US"})
	s.readFrame() // StartOk
	s.writeMethod(0, &ConnectionTune{ChannelMax: 2047, FrameSizeMax: 131072, HeartbeatDelay: 0})
	s.readFrame() // TuneOk
	s.readFrame() // Open
	s.writeMethod(0, &ConnectionOpenOk{})
}

func dialTestConfig() Config {
	return Config{
		VirtualHost: "/",
		SASL:        []Authentication{PlainAuth("guest", "guest")},
	}
}

func TestOpenCompletesHandshakeOverPipe(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverDone := make(chan struct{})
	go func() {
		runHandshakeServer(t, serverConn)
		close(serverDone)
		// Answer the deferred Close so its wait for CloseOk returns.
		s := &fakeServerConn{t: t, conn: serverConn}
		s.readFrame() // ConnectionClose
		s.writeMethod(0, &ConnectionCloseOk{})
	}()

	openDone := make(chan struct {
		conn *Connection
		err  error
	}, 1)
	go func() {
		conn, err := Open(clientConn, dialTestConfig())
		openDone <- struct {
			conn *Connection
			err  error
		}{conn, err}
	}()

	select {
	case res := <-openDone:
		if res.err != nil {
			t.Fatalf("Open failed: %v", res.err)
		}
		defer res.conn.Close(nil)
	case <-time.After(2 * time.Second):
		t.Fatal("Open never completed")
	}
	<-serverDone
}

func TestOpenRejectsBadServerVersion(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		s := &fakeServerConn{t: t, conn: serverConn}
		s.readProtocolHeader()
		s.writeMethod(0, &ConnectionStart{VersionMajor: 0, VersionMinor: 8, Mechanisms: "PLAIN", Locales: "en_US"})
	}()

	_, err := Open(clientConn, dialTestConfig())
	if _, ok := err.(*BadServerVersion); !ok {
		t.Fatalf("want *BadServerVersion, got %v (%T)", err, err)
	}
}

func TestOpenFailsWhenNoSharedMechanism(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		s := &fakeServerConn{t: t, conn: serverConn}
		s.readProtocolHeader()
		s.writeMethod(0, &ConnectionStart{VersionMajor: 0, VersionMinor: 9, Mechanisms: "EXTERNAL", Locales: "en_US"})
	}()

	cfg := dialTestConfig() // SASL offers only PLAIN
	_, err := Open(clientConn, cfg)
	if _, ok := err.(*AuthFailed); !ok {
		t.Fatalf("want *AuthFailed, got %v (%T)", err, err)
	}
}

func TestConnectionChannelOpensAndClosesCleanly(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverReady := make(chan struct{})
	go func() {
		runHandshakeServer(t, serverConn)
		close(serverReady)
		// Serve one ChannelOpen -> ChannelOpenOk.
		s := &fakeServerConn{t: t, conn: serverConn}
		s.readFrame() // ChannelOpen on channel 1
		s.writeMethod(1, &ChannelOpenOk{})
		// Answer the deferred conn.Close so its wait for CloseOk returns.
		s.readFrame() // ConnectionClose
		s.writeMethod(0, &ConnectionCloseOk{})
	}()

	conn, err := Open(clientConn, dialTestConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close(nil)
	<-serverReady

	ch, err := conn.Channel(PriorityDefault)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if ch.ID() != 1 {
		t.Fatalf("want channel id 1, got %d", ch.ID())
	}
	if ch.State() != StateOpen {
		t.Fatalf("want StateOpen, got %s", ch.State())
	}
}

func TestConnectionOnErrorFiresOnClose(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go runHandshakeServer(t, serverConn)

	conn, err := Open(clientConn, dialTestConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	notified := make(chan error, 1)
	conn.OnError(func(_ *Connection, cause error) {
		notified <- cause
	})

	go func() {
		// Answer the client's ConnectionClose with CloseOk so Close's
		// SendSync resolves instead of blocking forever.
		s := &fakeServerConn{t: t, conn: serverConn}
		s.readFrame()
		s.writeMethod(0, &ConnectionCloseOk{})
	}()

	if err := conn.Close(nil); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("OnError callback never fired")
	}
}
