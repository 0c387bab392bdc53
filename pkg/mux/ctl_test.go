package mux

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"libcprobe/pkg/mux/msg"
)

// TestOpenSession verifies controller session creation.
func TestOpenSession(t *testing.T) {
	t.Parallel()

	// Create connected pipes for client/server
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// Start agent side in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
		}
	}()

	// Open controller session
	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	if ctl.sess == nil {
		t.Error("ctl.sess is nil")
	}
	if ctl.sess.mux == nil {
		t.Error("ctl.sess.mux is nil")
	}
	if ctl.enc == nil {
		t.Error("ctl.enc is nil")
	}
	if ctl.dec == nil {
		t.Error("ctl.dec is nil")
	}

	wg.Wait()
}

// TestCtlSession_Close verifies controller session close.
func TestCtlSession_Close(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ready := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		// Wait for controller to be ready
		<-ready
		agent.Close()
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}

	// Signal agent that controller is ready
	close(ready)

	wg.Wait()

	if err := ctl.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

// TestCtlSession_SendAndReceive verifies message sending and receiving.
func TestCtlSession_SendAndReceive(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	var agentReceivedMsg msg.Message
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		defer agent.Close()

		// Receive message from controller
		agentReceivedMsg, err = agent.ReceiveContext(context.Background())
		if err != nil {
			t.Errorf("agent.Receive() failed: %v", err)
			return
		}

		// Send response back to controller
		if err := agent.SendContext(context.Background(), msg.Hello{ID: "agent-1"}); err != nil {
			t.Errorf("agent.Send() failed: %v", err)
		}
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	// Send message to agent
	testMsg := msg.RunRequest{Checks: []string{"strcmp", "exp"}}
	if err := ctl.SendContext(context.Background(), testMsg); err != nil {
		t.Fatalf("ctl.Send() failed: %v", err)
	}

	// Receive response from agent
	receivedMsg, err := ctl.ReceiveContext(context.Background())
	if err != nil {
		t.Fatalf("ctl.Receive() failed: %v", err)
	}

	if receivedMsg.MsgType() != "Hello" {
		t.Errorf("ctl received MsgType = %q; want %q", receivedMsg.MsgType(), "Hello")
	}

	wg.Wait()

	if agentReceivedMsg == nil {
		t.Fatal("agent did not receive message")
	}
	if agentReceivedMsg.MsgType() != "RunRequest" {
		t.Errorf("agent received MsgType = %q; want %q", agentReceivedMsg.MsgType(), "RunRequest")
	}
}

// TestCtlSession_SendAndGetOneChannel verifies sending a message and opening one channel.
func TestCtlSession_SendAndGetOneChannel(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		defer agent.Close()

		// Receive message
		_, err = agent.ReceiveContext(context.Background())
		if err != nil {
			t.Errorf("agent.Receive() failed: %v", err)
			return
		}

		// Accept the channel from the controller
		conn, err := agent.AcceptNewChannelContext(context.Background())
		if err != nil {
			t.Errorf("agent.AcceptNewChannel() failed: %v", err)
			return
		}
		defer conn.Close()

		// Write some data to verify channel works
		if _, err := conn.Write([]byte("test")); err != nil {
			t.Errorf("conn.Write() failed: %v", err)
		}
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	testMsg := msg.RunRequest{Suites: []string{"math"}}
	conn, err := ctl.SendAndGetOneChannelContext(context.Background(), testMsg)
	if err != nil {
		t.Fatalf("SendAndGetOneChannel() failed: %v", err)
	}
	defer conn.Close()

	// Read data from agent
	buf := make([]byte, 4)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("conn.Read() failed: %v", err)
	}
	if string(buf[:n]) != "test" {
		t.Errorf("conn.Read() = %q; want %q", string(buf[:n]), "test")
	}

	wg.Wait()
}

// TestCtlSession_GetOneChannel verifies opening a channel without sending a message.
func TestCtlSession_GetOneChannel(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		defer agent.Close()

		// Accept the channel from the controller
		conn, err := agent.AcceptNewChannelContext(context.Background())
		if err != nil {
			t.Errorf("agent.AcceptNewChannel() failed: %v", err)
			return
		}
		defer conn.Close()

		// Echo data back
		buf := make([]byte, 4)
		n, err := conn.Read(buf)
		if err != nil {
			t.Errorf("conn.Read() failed: %v", err)
			return
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			t.Errorf("conn.Write() failed: %v", err)
		}
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	conn, err := ctl.GetOneChannelContext(context.Background())
	if err != nil {
		t.Fatalf("GetOneChannel() failed: %v", err)
	}
	defer conn.Close()

	// Write and read data
	if _, err := conn.Write([]byte("ping")); err != nil {
		t.Fatalf("conn.Write() failed: %v", err)
	}

	buf := make([]byte, 4)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("conn.Read() failed: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Errorf("conn.Read() = %q; want %q", string(buf[:n]), "ping")
	}

	wg.Wait()
}

// TestCtlSession_ConcurrentSends verifies that concurrent sends are properly synchronized.
func TestCtlSession_ConcurrentSends(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	receivedCount := 0
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		defer agent.Close()

		// Receive multiple messages
		for i := 0; i < 10; i++ {
			_, err := agent.ReceiveContext(context.Background())
			if err != nil {
				t.Errorf("agent.Receive() %d failed: %v", i, err)
				return
			}
			receivedCount++
		}
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	// Send messages concurrently
	var sendWg sync.WaitGroup
	for i := 0; i < 10; i++ {
		sendWg.Add(1)
		go func(n int) {
			defer sendWg.Done()
			testMsg := msg.RunRequest{Checks: []string{fmt.Sprintf("check-%d", n)}}
			if err := ctl.SendContext(context.Background(), testMsg); err != nil {
				t.Errorf("ctl.Send() %d failed: %v", n, err)
			}
		}(i)
	}

	sendWg.Wait()
	wg.Wait()

	if receivedCount != 10 {
		t.Errorf("received %d messages; want 10", receivedCount)
	}
}

// TestOpenSession_ServerClosesEarly verifies error handling when the other side closes during setup.
func TestOpenSession_ServerClosesEarly(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()

	// Close server immediately
	server.Close()

	// Should fail to open session
	_, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err == nil {
		t.Error("OpenSession() succeeded with closed server; want error")
	}
}

// TestCtlSession_ConcurrentSendAndGetOneChannel verifies that two concurrent
// SendAndGetOneChannel calls from the controller each get their own channel
// and do not mix data. This ensures the send+open-channel atomicity is
// preserved.
func TestCtlSession_ConcurrentSendAndGetOneChannel(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent, err := AcceptSessionContext(context.Background(), server, 50*time.Millisecond)
		if err != nil {
			t.Errorf("AcceptSession() failed: %v", err)
			return
		}
		defer agent.Close()

		// For two expected messages: receive then accept channel and write
		// a distinct payload for each.
		for i := 0; i < 2; i++ {
			_, err := agent.ReceiveContext(context.Background())
			if err != nil {
				t.Errorf("agent.Receive() failed: %v", err)
				return
			}

			conn, err := agent.AcceptNewChannelContext(context.Background())
			if err != nil {
				t.Errorf("agent.AcceptNewChannel() failed: %v", err)
				return
			}

			payload := fmt.Sprintf("resp%d", i)
			if _, err := conn.Write([]byte(payload)); err != nil {
				t.Errorf("conn.Write() failed: %v", err)
			}
			conn.Close()
		}
	}()

	ctl, err := OpenSessionContext(context.Background(), client, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer ctl.Close()

	// Start two concurrent SendAndGetOneChannel calls.
	results := make([]string, 2)
	var sendWg sync.WaitGroup
	sendWg.Add(2)
	for i := 0; i < 2; i++ {
		go func(idx int) {
			defer sendWg.Done()
			testMsg := msg.Console{}
			conn, err := ctl.SendAndGetOneChannelContext(context.Background(), testMsg)
			if err != nil {
				t.Errorf("SendAndGetOneChannel() failed: %v", err)
				return
			}
			defer conn.Close()

			buf := make([]byte, 16)
			n, err := conn.Read(buf)
			if err != nil {
				t.Errorf("conn.Read() failed: %v", err)
				return
			}
			results[idx] = string(buf[:n])
		}(i)
	}

	sendWg.Wait()
	wg.Wait()

	// Ensure both expected responses are present.
	found0, found1 := false, false
	for _, r := range results {
		if r == "resp0" {
			found0 = true
		}
		if r == "resp1" {
			found1 = true
		}
	}
	if !found0 || !found1 {
		t.Fatalf("unexpected responses: %v; want resp0 and resp1", results)
	}
}
