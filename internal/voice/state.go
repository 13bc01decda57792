// Package voice acquires and supervises real-time audio connections, one per
// guild, and streams synthesized audio to them. The transport is a port: the
// production implementation rides on discordgo, tests use fakes.
package voice

// State is the lifecycle state of a voice connection.
type State int

const (
	StateConnecting State = iota
	StateReady
	StateDisconnected
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateReady:
		return "Ready"
	case StateDisconnected:
		return "Disconnected"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// StateFunc receives connection state transitions. Implementations of
// Transport must deliver notifications asynchronously, never from inside
// Join itself.
type StateFunc func(conn Conn, old, new State)

// Conn is a live voice connection for one guild.
type Conn interface {
	// SendOpus delivers one 20ms opus frame, blocking until the transport
	// accepts it or the connection is destroyed.
	SendOpus(frame []byte)
	// Speaking toggles the speaking indicator around a playback burst.
	Speaking(on bool) error
	// Destroy tears the connection down and fires the Destroyed transition.
	Destroy()
	State() State
	// Done is closed when the connection is destroyed, so senders can stop
	// instead of pumping frames into a dead connection.
	Done() <-chan struct{}
}

// Transport establishes voice connections.
type Transport interface {
	Join(guildID, channelID string, notify StateFunc) (Conn, error)
}
