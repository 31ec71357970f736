// Package external provides a SyncExternal collaborator
// (objtable.SyncFactory) for the table engine: a minimal websocket bridge
// that pushes TableSeqNums summaries to connected UI clients and lets
// them acknowledge a requested sync. This is the "UI" client named in
// spec.md §1, kept behind objtable.SyncFactory so the actual inter-part
// messaging substrate stays out of scope (spec.md Non-goals).
package external

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mosaicautomation/objtable/internal/objtable"
)

// Bridge implements objtable.SyncFactory over one or more websocket
// connections. Each connected client receives every TableSeqNums update.
// An in-flight BeginSync is satisfied by the next JSON message read from
// one client; the Ack field of that message is not checked.
type Bridge struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
}

// syncRequest is pushed to every client when BeginSync starts.
type syncRequest struct {
	Kind string `json:"kind"`
}

// syncAck is the expected client reply.
type syncAck struct {
	Ack bool `json:"ack"`
}

// NewBridge returns an empty Bridge.
func NewBridge(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{logger: logger, clients: make(map[*client]struct{})}
}

// Handler returns an http.Handler that upgrades incoming requests to
// websocket connections and registers them with the bridge.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			b.logger.Warn("external: websocket accept failed", slog.Any("error", err))
			return
		}

		c := &client{conn: conn}

		b.mu.Lock()
		b.clients[c] = struct{}{}
		b.mu.Unlock()

		defer func() {
			b.mu.Lock()
			delete(b.clients, c)
			b.mu.Unlock()
			conn.Close(websocket.StatusNormalClosure, "done")
		}()

		<-r.Context().Done()
	})
}

// PushSeqNums broadcasts a TableSeqNums summary to every connected
// client; the serve command calls it each time its poll of
// Table.SeqNums() finds a new TableChange value.
func (b *Bridge) PushSeqNums(ctx context.Context, s objtable.TableSeqNums) {
	b.mu.Lock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.Unlock()

	for _, c := range clients {
		if err := wsjson.Write(ctx, c.conn, s); err != nil {
			b.logger.Warn("external: push failed", slog.Any("error", err))
		}
	}
}

// Online implements objtable.SyncFactory: the factory is online whenever
// at least one UI client is connected.
func (b *Bridge) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clients) > 0
}

// BeginSync implements objtable.SyncFactory: it writes a sync request to
// every connected client, then reads one JSON message from a single one of
// them (the first in the bridge's unordered client set) and completes with
// that read's error; the message's Ack value is not checked and the other
// clients' replies are not read. It completes immediately with nil when
// no client is connected.
func (b *Bridge) BeginSync(ctx context.Context) (<-chan error, func()) {
	done := make(chan error, 1)

	b.mu.Lock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.Unlock()

	if len(clients) == 0 {
		done <- nil
		return done, func() {}
	}

	syncCtx, cancel := context.WithCancel(ctx)

	go func() {
		for _, c := range clients {
			_ = wsjson.Write(syncCtx, c.conn, syncRequest{Kind: "sync"})
		}

		var ack syncAck
		err := wsjson.Read(syncCtx, clients[0].conn, &ack)
		done <- err
	}()

	return done, cancel
}

var _ objtable.SyncFactory = (*Bridge)(nil)
