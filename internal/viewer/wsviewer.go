// Package viewer provides the built-in "wsviewer": a viewer that serves
// published body states and draw primitives to websocket clients as JSON.
// A newly connected client receives the latest snapshot and every live
// primitive before incremental updates.
package viewer

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

// TypeName is the registered viewer type.
const TypeName = "wsviewer"

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8750"

func init() {
	plugins.Provide(TypeName, func() *plugins.Descriptor {
		return &plugins.Descriptor{
			Name: TypeName,
			Constructors: map[iface.Kind]map[string]plugins.Constructor{
				iface.KindViewer: {
					TypeName: func() iface.Interface { return New(DefaultAddr) },
				},
			},
		}
	})
}

// sendBuffer is the per-client outgoing queue; a slow client drops
// updates rather than stalling the simulation.
const sendBuffer = 64

// Viewer implements iface.Viewer over websockets.
type Viewer struct {
	iface.Base
	addr string

	mu         sync.Mutex
	clients    map[*client]struct{}
	primitives map[string]*message
	lastBodies *message
	srv        *http.Server
	listener   net.Listener

	upgrader websocket.Upgrader
}

// New returns a viewer that will listen on addr once initialized.
func New(addr string) *Viewer {
	v := &Viewer{
		Base:       iface.NewBase(iface.KindViewer, TypeName),
		addr:       addr,
		clients:    map[*client]struct{}{},
		primitives: map[string]*message{},
	}
	v.SetDescription("streams body states and draw primitives over websockets")
	return v
}

// Init starts the websocket server. It reports whether the listen address
// could be bound.
func (v *Viewer) Init(w iface.World) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listener != nil {
		return true
	}
	ln, err := net.Listen("tcp", v.addr)
	if err != nil {
		return false
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", v.serveWS)
	v.listener = ln
	v.srv = &http.Server{Handler: mux}
	go v.srv.Serve(ln)
	return true
}

// Addr returns the bound listen address, or the configured one before
// Init.
func (v *Viewer) Addr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listener != nil {
		return v.listener.Addr().String()
	}
	return v.addr
}

// Quit shuts the server down and disconnects every client.
func (v *Viewer) Quit() {
	v.mu.Lock()
	srv := v.srv
	v.srv = nil
	v.listener = nil
	clients := make([]*client, 0, len(v.clients))
	for c := range v.clients {
		clients = append(clients, c)
	}
	v.clients = map[*client]struct{}{}
	v.primitives = map[string]*message{}
	v.lastBodies = nil
	v.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// UpdateBodies broadcasts a fresh snapshot. It never blocks: slow clients
// miss intermediate snapshots.
func (v *Viewer) UpdateBodies(states []body.PublishedState) {
	msg := bodiesMessage(states)
	v.mu.Lock()
	v.lastBodies = msg
	v.broadcastLocked(msg)
	v.mu.Unlock()
}

func (v *Viewer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := v.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan *message, sendBuffer), id: uuid.New()}

	v.mu.Lock()
	v.clients[c] = struct{}{}
	if v.lastBodies != nil {
		c.enqueue(v.lastBodies)
	}
	for _, p := range v.primitives {
		c.enqueue(p)
	}
	v.mu.Unlock()

	go c.writeLoop(v)
	go c.readLoop(v)
}

func (v *Viewer) broadcastLocked(msg *message) {
	for c := range v.clients {
		c.enqueue(msg)
	}
}

func (v *Viewer) drop(c *client) {
	v.mu.Lock()
	delete(v.clients, c)
	v.mu.Unlock()
	c.close()
}

// addPrimitive registers and broadcasts a draw message, returning its
// removal handle.
func (v *Viewer) addPrimitive(msg *message) iface.Graph {
	v.mu.Lock()
	v.primitives[msg.ID] = msg
	v.broadcastLocked(msg)
	v.mu.Unlock()
	return &graph{viewer: v, id: msg.ID}
}

func (v *Viewer) removePrimitive(id string) {
	msg := &message{Type: "remove", ID: id}
	v.mu.Lock()
	delete(v.primitives, id)
	v.broadcastLocked(msg)
	v.mu.Unlock()
}

// graph is the removal handle for one drawn primitive.
type graph struct {
	viewer *Viewer
	id     string
	once   sync.Once
}

func (g *graph) Remove() {
	g.once.Do(func() { g.viewer.removePrimitive(g.id) })
}

// client is one websocket connection with its outgoing queue.
type client struct {
	conn      *websocket.Conn
	send      chan *message
	id        uuid.UUID
	closeOnce sync.Once
}

func (c *client) enqueue(msg *message) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

func (c *client) writeLoop(v *Viewer) {
	for msg := range c.send {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			v.drop(c)
			return
		}
	}
}

// readLoop drains client frames so pings are answered, and detects
// disconnects.
func (c *client) readLoop(v *Viewer) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			v.drop(c)
			return
		}
	}
}
