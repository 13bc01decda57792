package voice

import (
	"errors"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// DiscordTransport joins guild voice channels through a discordgo session.
type DiscordTransport struct {
	dg *discordgo.Session
}

func NewDiscordTransport(dg *discordgo.Session) *DiscordTransport {
	return &DiscordTransport{dg: dg}
}

// Join starts connecting to channelID and returns a not-yet-ready handle.
// The Ready (or Disconnected, on failure) transition is delivered to notify
// from a separate goroutine once the join completes.
func (t *DiscordTransport) Join(guildID, channelID string, notify StateFunc) (Conn, error) {
	c := &discordConn{state: StateConnecting, notify: notify, done: make(chan struct{})}

	go func() {
		vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil {
			// Not fatal: the supervisor's Disconnected handler retries.
			log.Printf("[ERR] Failed to join channel %s on guild %s: %v", channelID, guildID, err)
			c.setState(StateDisconnected)
			return
		}
		c.mu.Lock()
		c.vc = vc
		c.mu.Unlock()
		c.setState(StateReady)
	}()

	return c, nil
}

type discordConn struct {
	mu         sync.Mutex
	vc         *discordgo.VoiceConnection
	state      State
	notify     StateFunc
	done       chan struct{}
	doneClosed bool
}

func (c *discordConn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState records the transition and notifies. No-op transitions and
// anything after Destroyed are dropped.
func (c *discordConn) setState(new State) {
	c.mu.Lock()
	old := c.state
	if old == new || old == StateDestroyed {
		c.mu.Unlock()
		return
	}
	c.state = new
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(c, old, new)
	}
}

func (c *discordConn) Done() <-chan struct{} {
	return c.done
}

func (c *discordConn) SendOpus(frame []byte) {
	c.mu.Lock()
	vc := c.vc
	c.mu.Unlock()
	if vc == nil {
		return
	}
	// A destroyed connection stops draining OpusSend; unblock the sender.
	select {
	case vc.OpusSend <- frame:
	case <-c.done:
	}
}

func (c *discordConn) Speaking(on bool) error {
	c.mu.Lock()
	vc := c.vc
	c.mu.Unlock()
	if vc == nil {
		return errors.New("voice connection is not ready")
	}
	return vc.Speaking(on)
}

func (c *discordConn) Destroy() {
	c.mu.Lock()
	vc := c.vc
	c.vc = nil
	if !c.doneClosed {
		c.doneClosed = true
		close(c.done)
	}
	c.mu.Unlock()

	if vc != nil {
		if err := vc.Disconnect(); err != nil {
			log.Printf("[WARN] Voice disconnect error: %v", err)
		}
	}
	c.setState(StateDestroyed)
}
