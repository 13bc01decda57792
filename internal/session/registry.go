package session

import (
	"log"
	"sync"
	"time"
)

// Registry maps guild IDs to their playback sessions and drives each queue.
// All mutation goes through its entry points: Enqueue, AttachPlayer,
// OnQueueUpdate, Remove, and the idle-timer callback. A single mutex
// serializes them, so no two events for the same guild ever race.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	onEvict     func(guildID string)
}

// New creates an empty registry. idleTimeout is how long a guild may sit
// with an empty queue and an idle player before its connection is torn down.
func New(idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
}

// SetEvictFunc installs the callback invoked (outside the registry lock)
// when a guild's idle timer fires. The evicted session is already removed
// when the callback runs, so the callback only tears down the guild's
// voice connection; any session present afterwards belongs to a newer
// request and must be left alone.
func (r *Registry) SetEvictFunc(fn func(guildID string)) {
	r.mu.Lock()
	r.onEvict = fn
	r.mu.Unlock()
}

// Enqueue appends urls to the guild's queue, creating a playerless session
// if none exists, and immediately considers the queue for playback. FIFO
// only; there is no reordering and no priority.
func (r *Registry) Enqueue(guildID string, urls []string) {
	if len(urls) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(guildID)
	s.queue = append(s.queue, urls...)
	log.Printf("[Session] Enqueued %d item(s) for guild %s | QueueLen=%d", len(urls), guildID, len(s.queue))
	r.advance(guildID, s)
}

// AttachPlayer stores the player handle for the guild, replacing any
// previous one, and creates the session if it does not exist yet.
func (r *Registry) AttachPlayer(guildID string, p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(guildID)
	s.player = p
}

// OnQueueUpdate re-evaluates the guild's queue. It is idempotent and safe
// to call redundantly: with no session, no player, or a busy player it does
// nothing. It advances the queue by at most one item per call; further
// advances are driven by the player's next idle notification.
func (r *Registry) OnQueueUpdate(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	if !ok {
		return
	}
	r.advance(guildID, s)
}

// Remove drops the guild's session, stopping any armed idle timer. Used
// when the connection is destroyed so no dangling handle survives.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	if !ok {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	delete(r.sessions, guildID)
}

// Queue returns a copy of the guild's pending URLs.
func (r *Registry) Queue(guildID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	if !ok {
		return nil
	}
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

// Has reports whether a session exists for the guild.
func (r *Registry) Has(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[guildID]
	return ok
}

// TimerArmed reports whether the guild's idle-eviction timer is armed.
func (r *Registry) TimerArmed(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	return ok && s.idleTimer != nil
}

func (r *Registry) getOrCreate(guildID string) *Session {
	s, ok := r.sessions[guildID]
	if !ok {
		s = &Session{}
		r.sessions[guildID] = s
	}
	return s
}

// advance drives the queue by at most one item. Caller holds r.mu.
//
// The idle timer is armed exactly when the queue is empty and the player is
// present and idle; any call that observes new work disarms it before
// popping, so a timer can never fire after work has been queued.
func (r *Registry) advance(guildID string, s *Session) {
	if s.player == nil || !s.player.IsIdle() {
		return
	}

	if len(s.queue) == 0 {
		if s.idleTimer == nil {
			s.timerGen++
			gen := s.timerGen
			s.idleTimer = time.AfterFunc(r.idleTimeout, func() {
				r.evictIdle(guildID, gen)
			})
			log.Printf("[Session] Queue drained for guild %s, idle timer armed", guildID)
		}
		return
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	url := s.queue[0]
	s.queue = s.queue[1:]
	log.Printf("[Session] Playing next item for guild %s | QueueLen=%d", guildID, len(s.queue))
	s.player.Play(url)
}

// evictIdle is the idle-timer callback. The generation check makes a stale
// fire (timer already disarmed or replaced while this call waited on the
// lock) a no-op.
func (r *Registry) evictIdle(guildID string, gen int) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if !ok || s.idleTimer == nil || s.timerGen != gen {
		r.mu.Unlock()
		return
	}
	// The timer being armed means the queue is empty and the player idle;
	// anything that changed either would have disarmed it.
	delete(r.sessions, guildID)
	evict := r.onEvict
	r.mu.Unlock()

	log.Printf("[Session] Guild %s idle for %v, evicting", guildID, r.idleTimeout)
	if evict != nil {
		evict(guildID)
	}
}
