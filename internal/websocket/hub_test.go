package websocket_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/service"
	"github.com/mira/workspace-hub/internal/websocket"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()
	hub.Stop()

	// A connection racing shutdown must not block on the hub channels.
	client := websocket.NewClient(hub, nil, uuid.New(), uuid.New())
	done := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub stop")
	}
}

func TestHub_PublishAfterStop(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.PublishActivity(uuid.New(), service.ActivityEvent{Type: service.ActivityOpened})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after hub stop")
	}
}

func TestHub_StopIsIdempotentForClients(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()

	client := websocket.NewClient(hub, nil, uuid.New(), uuid.New())
	hub.Register(client)
	hub.Stop()

	// Stop already closed the client; a late unregister must not panic or
	// double-close it.
	assert.NotPanics(t, func() {
		hub.Unregister(client)
		client.Close()
	})
}
