package amqpwire

import (
	"bytes"
	"testing"
	"time"
)

// fakeSender is an in-memory frameSender: it records every enqueued frame
// and lets the test inject frames as if they had arrived from the peer.
type fakeSender struct {
	sent   []Frame
	closed []uint16
}

func (f *fakeSender) enqueueFrame(priority int, fr Frame, done chan error) {
	f.sent = append(f.sent, fr)
	if done != nil {
		done <- nil
	}
}
func (f *fakeSender) frameOverhead() int { return 0 }
func (f *fakeSender) notifyChannelClosed(id uint16) {
	f.closed = append(f.closed, id)
}

func TestChannelOpenTransitionsToOpenOnOpenOk(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	if ch.State() != StateOpenPending {
		t.Fatalf("new non-control channel must start open-pending, got %s", ch.State())
	}

	done := make(chan error, 1)
	go func() { done <- ch.awaitOpen() }()

	f, err := packMethodFrame(1, &ChannelOpenOk{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.recvFrame(f); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("awaitOpen returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("awaitOpen never unblocked")
	}
	if ch.State() != StateOpen {
		t.Fatalf("want StateOpen, got %s", ch.State())
	}
}

func TestChannelSendRejectsWhenNotOpen(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false) // still open-pending
	err := ch.Send(&BasicPublish{}, nil, nil, PriorityDefault)
	if err == nil {
		t.Fatal("want error sending on a not-yet-open channel")
	}
}

func TestChannelSendWithContentEnqueuesMethodHeaderAndBody(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	ch.state = StateOpen

	body := []byte("hello world")
	if err := ch.Send(&BasicPublish{Exchange: "logs"}, (&BasicProperties{}).WithContentType("text/plain"), body, PriorityDefault); err != nil {
		t.Fatal(err)
	}

	if len(fs.sent) != 3 {
		t.Fatalf("want 3 frames (method, header, body), got %d", len(fs.sent))
	}
	if fs.sent[0].Type != frameMethod || fs.sent[1].Type != frameHeader || fs.sent[2].Type != frameBody {
		t.Fatalf("unexpected frame sequence: %+v", fs.sent)
	}
	if !bytes.Equal(fs.sent[2].Payload, body) {
		t.Fatalf("body frame payload mismatch: %q", fs.sent[2].Payload)
	}
}

func TestChannelSendSyncResolvesOnMatchingResponse(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	ch.state = StateOpen

	resultCh := make(chan Method, 1)
	errCh := make(chan error, 1)
	go func() {
		m, err := ch.SendSync(&QueueDeclare{Queue: "jobs"}, PriorityControl)
		resultCh <- m
		errCh <- err
	}()

	// Give SendSync time to register its pending call before the response
	// arrives, mirroring how the real connection's send loop and dispatch
	// loop run concurrently.
	time.Sleep(10 * time.Millisecond)

	f, err := packMethodFrame(1, &QueueDeclareOk{Queue: "jobs", MessageCount: 0, ConsumerCount: 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.recvFrame(f); err != nil {
		t.Fatal(err)
	}

	select {
	case m := <-resultCh:
		if err := <-errCh; err != nil {
			t.Fatalf("SendSync returned error: %v", err)
		}
		ok, isOk := m.(*QueueDeclareOk)
		if !isOk || ok.Queue != "jobs" {
			t.Fatalf("got %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("SendSync never resolved")
	}
}

func TestChannelWatchReceivesMatchingDelivery(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	ch.state = StateOpen

	sink := make(chan Delivery, 1)
	ch.Watch(MatchConsumerTag("ctag-1"), sink)

	mf, err := packMethodFrame(1, &BasicDeliver{ConsumerTag: "ctag-1", DeliveryTag: 1, Exchange: "logs", RoutingKey: "info"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.recvFrame(mf); err != nil {
		t.Fatal(err)
	}

	body := []byte("payload")
	hf, err := packHeaderFrame(1, ContentHeader{ClassID: classBasic, BodySize: uint64(len(body))})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.recvFrame(hf); err != nil {
		t.Fatal(err)
	}
	bf := packBodyFrame(1, body)
	if err := ch.recvFrame(bf); err != nil {
		t.Fatal(err)
	}

	select {
	case d := <-sink:
		if !bytes.Equal(d.Body, body) {
			t.Fatalf("got body %q, want %q", d.Body, body)
		}
		deliver, ok := d.Method.(*BasicDeliver)
		if !ok || deliver.ConsumerTag != "ctag-1" {
			t.Fatalf("got %+v", d.Method)
		}
	default:
		t.Fatal("watch sink received nothing")
	}
}

func TestChannelHandlePeerCloseFailsPendingAndNotifiesConnection(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	ch.state = StateOpen

	errCh := make(chan error, 1)
	go func() {
		_, err := ch.SendSync(&QueueDeclare{Queue: "jobs"}, PriorityControl)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)

	cf, err := packMethodFrame(1, &ChannelClose{ReplyCode: 404, ReplyText: "NOT_FOUND"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.recvFrame(cf); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		ae, ok := err.(AMQPError)
		if !ok || ae.Code() != 404 {
			t.Fatalf("want AMQPError code 404, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending SendSync never failed")
	}

	if ch.State() != StateClosed {
		t.Fatalf("want StateClosed after peer close, got %s", ch.State())
	}
	if len(fs.closed) != 1 || fs.closed[0] != 1 {
		t.Fatalf("want notifyChannelClosed(1), got %v", fs.closed)
	}
}

func TestChannelFailAllUnblocksPendingCall(t *testing.T) {
	fs := &fakeSender{}
	ch := newChannel(1, fs, false)
	ch.state = StateOpen

	errCh := make(chan error, 1)
	go func() {
		_, err := ch.SendSync(&QueueDeclare{Queue: "jobs"}, PriorityControl)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)

	wantErr := &FrameError{Reason: "connection lost"}
	ch.failAll(wantErr)

	select {
	case err := <-errCh:
		if err != wantErr {
			t.Fatalf("got %v, want %v", err, wantErr)
		}
	case <-time.After(time.Second):
		t.Fatal("failAll never unblocked pending SendSync")
	}
	if ch.State() != StateClosed {
		t.Fatalf("want StateClosed, got %s", ch.State())
	}
}
