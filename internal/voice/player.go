package voice

import (
	"io"
	"log"
	"sync"
)

// Player streams one URL at a time to a voice connection. It satisfies the
// session.Player contract: Play flips the player busy before returning, the
// fetch and streaming run in a goroutine, and completion (success or
// failure) flips it idle and fires the idle notification. A bad URL is not
// retried; the idle notification simply advances the queue. Destroying the
// connection halts an in-flight stream.
type Player struct {
	mu     sync.Mutex
	busy   bool
	conn   Conn
	onIdle func()
	open   func(url string) (io.ReadCloser, func(), error)
}

// NewPlayer binds a player to conn. onIdle is invoked after every playback
// attempt finishes.
func NewPlayer(conn Conn, onIdle func()) *Player {
	return &Player{
		conn:   conn,
		onIdle: onIdle,
		open:   openURLStream,
	}
}

// IsIdle reports whether no playback is in flight.
func (p *Player) IsIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.busy
}

// Play begins asynchronous playback of url. The player reports busy from the
// moment Play returns.
func (p *Player) Play(url string) {
	p.mu.Lock()
	p.busy = true
	p.mu.Unlock()
	go p.run(url)
}

func (p *Player) run(url string) {
	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()
		if p.onIdle != nil {
			p.onIdle()
		}
	}()

	stream, cleanup, err := p.open(url)
	if err != nil {
		log.Printf("[Player] Failed to open stream: %v", err)
		return
	}
	defer cleanup()

	if err := streamToConn(stream, p.conn, p.conn.Done()); err != nil {
		log.Printf("[Player] Playback finished with error: %v", err)
	}
}
