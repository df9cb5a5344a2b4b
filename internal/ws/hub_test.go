package ws

import (
	"encoding/json"
	"testing"

	"github.com/t9fiction/Solana-Task-Manager/internal/service"
)

func newTestClient(wallet, filter string) *Client {
	return &Client{
		Wallet:       wallet,
		AuthorFilter: filter,
		send:         make(chan []byte, 4),
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	a := newTestClient("walletA", "")
	b := newTestClient("walletB", "")
	h.register(a)
	h.register(b)

	h.PublishTaskEvent(service.TaskEvent{
		Type:    service.EventTaskCreated,
		Address: "addr1",
		Author:  "author1",
	})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			var evt map[string]any
			if err := json.Unmarshal(msg, &evt); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if evt["type"] != "task_created" || evt["address"] != "addr1" {
				t.Fatalf("unexpected event %v", evt)
			}
		default:
			t.Fatalf("client %s got no event", c.Wallet)
		}
	}
}

func TestHubAuthorFilter(t *testing.T) {
	h := NewHub()
	all := newTestClient("walletA", "")
	onlyX := newTestClient("walletB", "authorX")
	h.register(all)
	h.register(onlyX)

	h.PublishTaskEvent(service.TaskEvent{Type: service.EventTaskUpdated, Address: "a", Author: "authorY"})

	if len(all.send) != 1 {
		t.Fatal("unfiltered client missed event")
	}
	if len(onlyX.send) != 0 {
		t.Fatal("filtered client received foreign author's event")
	}

	h.PublishTaskEvent(service.TaskEvent{Type: service.EventTaskUpdated, Address: "b", Author: "authorX"})
	if len(onlyX.send) != 1 {
		t.Fatal("filtered client missed matching event")
	}
}

func TestHubDropsWhenSubscriberLags(t *testing.T) {
	h := NewHub()
	c := newTestClient("slow", "")
	h.register(c)

	// fill the buffer past capacity; publishing must not block
	for i := 0; i < cap(c.send)+3; i++ {
		h.PublishTaskEvent(service.TaskEvent{Type: service.EventTaskCreated, Address: "x", Author: "y"})
	}
	if len(c.send) != cap(c.send) {
		t.Fatalf("buffered %d, want %d", len(c.send), cap(c.send))
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	c := newTestClient("w", "")
	h.register(c)
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers %d, want 1", h.Subscribers())
	}

	h.unregister(c)
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers %d, want 0", h.Subscribers())
	}
	if _, ok := <-c.send; ok {
		t.Fatal("send channel not closed")
	}

	// double unregister is harmless
	h.unregister(c)
}
