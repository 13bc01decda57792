package voice

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tuananhvga/temptts/internal/session"
)

// PlayerFactory builds a player bound to a ready connection. onIdle is fired
// whenever a playback attempt finishes, successfully or not.
type PlayerFactory func(conn Conn, onIdle func()) session.Player

// Supervisor owns at most one voice connection per guild. It acquires
// connections on demand, reacts to their state transitions (creating a fresh
// player on Ready, re-joining on Disconnected, cleaning up on Destroyed),
// and serves as the registry's evict callback.
type Supervisor struct {
	mu        sync.Mutex
	ctx       context.Context
	transport Transport
	registry  *session.Registry
	newPlayer PlayerFactory
	conns     map[string]*guildConn
}

type guildConn struct {
	conn      Conn
	channelID string
	limiter   *rate.Limiter
	// evicting marks an idle-eviction teardown in flight: the connection is
	// dying and must not be reused, and its Destroyed cleanup must not
	// touch any session a racing request may have created.
	evicting bool
}

// NewSupervisor wires a supervisor to the registry: the registry's idle
// eviction destroys connections through evict. ctx bounds reconnect waits.
func NewSupervisor(ctx context.Context, transport Transport, registry *session.Registry) *Supervisor {
	s := &Supervisor{
		ctx:       ctx,
		transport: transport,
		registry:  registry,
		conns:     make(map[string]*guildConn),
	}
	s.newPlayer = func(conn Conn, onIdle func()) session.Player {
		return NewPlayer(conn, onIdle)
	}
	registry.SetEvictFunc(s.evict)
	return s
}

// SetPlayerFactory overrides the production player, for tests.
func (s *Supervisor) SetPlayerFactory(f PlayerFactory) {
	s.mu.Lock()
	s.newPlayer = f
	s.mu.Unlock()
}

// Acquire returns the guild's voice connection, joining channelID if no
// usable connection exists. An existing connection in any non-destroyed
// state is reused unchanged, so at most one connection per guild is ever
// created concurrently. The returned handle may not be ready yet; playback
// starts once the Ready transition arrives.
func (s *Supervisor) Acquire(guildID, channelID string) error {
	s.mu.Lock()
	// A nil conn means a join is already in flight; reuse that too. A
	// connection mid-eviction is as good as destroyed and never reused.
	if gc, ok := s.conns[guildID]; ok && !gc.evicting && (gc.conn == nil || gc.conn.State() != StateDestroyed) {
		s.mu.Unlock()
		return nil
	}
	gc := &guildConn{
		channelID: channelID,
		// Reconnect throttle: one attempt per 2s with a small burst, so a
		// persistent disconnect cannot spin.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
	s.conns[guildID] = gc
	s.mu.Unlock()

	return s.join(guildID, channelID)
}

// Release destroys the guild's connection and its session. Used for
// explicit teardown; the Destroyed transition performs the state cleanup.
func (s *Supervisor) Release(guildID string) {
	s.mu.Lock()
	gc, ok := s.conns[guildID]
	s.mu.Unlock()

	if !ok || gc.conn == nil {
		s.registry.Remove(guildID)
		return
	}
	log.Printf("[Voice] Destroying connection for guild %s", guildID)
	gc.conn.Destroy()
}

// evict is the registry's idle-eviction callback. The evicted session is
// already removed, atomically with the timer check, by the time this runs;
// only the connection teardown remains. Marking the eviction first keeps
// Acquire from handing the dying connection to a racing request.
func (s *Supervisor) evict(guildID string) {
	s.mu.Lock()
	gc, ok := s.conns[guildID]
	if ok {
		gc.evicting = true
	}
	s.mu.Unlock()

	if !ok || gc.conn == nil {
		return
	}
	log.Printf("[Voice] Destroying connection for guild %s", guildID)
	gc.conn.Destroy()
}

func (s *Supervisor) join(guildID, channelID string) error {
	conn, err := s.transport.Join(guildID, channelID, func(c Conn, old, new State) {
		s.handleStateChange(guildID, c, old, new)
	})
	if err != nil {
		s.mu.Lock()
		if gc, ok := s.conns[guildID]; ok && gc.conn == nil {
			delete(s.conns, guildID)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if gc, ok := s.conns[guildID]; ok {
		gc.conn = conn
	}
	s.mu.Unlock()
	return nil
}

// handleStateChange reacts to transport notifications. Notifications that
// report no actual change are ignored, which also guards against duplicate
// player creation.
func (s *Supervisor) handleStateChange(guildID string, conn Conn, old, new State) {
	if old == new {
		return
	}
	log.Printf("[Voice] Guild %s connection: %s -> %s", guildID, old, new)

	switch new {
	case StateReady:
		s.handleReady(guildID, conn)
	case StateDisconnected:
		go s.reacquire(guildID)
	case StateDestroyed:
		s.handleDestroyed(guildID, conn)
	}
}

// handleReady binds a fresh player to the connection, registers its idle
// notification against the playback queue, and kicks the queue once to
// drain anything enqueued before the connection came up.
func (s *Supervisor) handleReady(guildID string, conn Conn) {
	s.mu.Lock()
	if gc, ok := s.conns[guildID]; ok {
		gc.conn = conn
	}
	factory := s.newPlayer
	s.mu.Unlock()

	player := factory(conn, func() {
		s.registry.OnQueueUpdate(guildID)
	})
	s.registry.AttachPlayer(guildID, player)
	s.registry.OnQueueUpdate(guildID)
}

// reacquire re-joins the same guild/channel after a disconnect. This is
// self-healing, not an error path; attempts are throttled by the per-guild
// limiter.
func (s *Supervisor) reacquire(guildID string) {
	s.mu.Lock()
	gc, ok := s.conns[guildID]
	if !ok {
		s.mu.Unlock()
		return
	}
	channelID := gc.channelID
	limiter := gc.limiter
	s.mu.Unlock()

	if err := limiter.Wait(s.ctx); err != nil {
		return
	}

	s.mu.Lock()
	gc, ok = s.conns[guildID]
	if !ok || (gc.conn != nil && gc.conn.State() == StateReady) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	log.Printf("[Voice] Reconnecting guild %s to channel %s", guildID, channelID)
	if err := s.join(guildID, channelID); err != nil {
		log.Printf("[ERR] Reconnect failed for guild %s: %v", guildID, err)
	}
}

// handleDestroyed drops the tracked connection and removes the guild's
// session in the same step, so no dangling player handle survives. An
// idle eviction already removed its own session, so that path must not
// remove anything: a request racing the teardown may have buffered work
// into a fresh session, which gets a new connection instead.
func (s *Supervisor) handleDestroyed(guildID string, conn Conn) {
	s.mu.Lock()
	gc, ok := s.conns[guildID]
	if ok && gc.conn != conn {
		// A newer connection already replaced this one; nothing to clean up.
		s.mu.Unlock()
		return
	}
	evicting := false
	channelID := ""
	if ok {
		evicting = gc.evicting
		channelID = gc.channelID
		delete(s.conns, guildID)
	}
	s.mu.Unlock()

	if !evicting {
		s.registry.Remove(guildID)
		return
	}

	if len(s.registry.Queue(guildID)) > 0 {
		log.Printf("[Voice] Guild %s queued work during eviction, rejoining channel %s", guildID, channelID)
		if err := s.Acquire(guildID, channelID); err != nil {
			log.Printf("[ERR] Rejoin after eviction failed for guild %s: %v", guildID, err)
		}
	}
}

// Connected reports whether a non-destroyed connection is tracked for the
// guild.
func (s *Supervisor) Connected(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	gc, ok := s.conns[guildID]
	return ok && gc.conn != nil && gc.conn.State() != StateDestroyed
}
