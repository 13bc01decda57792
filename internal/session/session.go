// Package session owns the per-guild playback state: the FIFO queue of
// pending audio URLs, the player handle for the guild's voice connection,
// and the idle-eviction timer that tears the connection down after a period
// of silence.
package session

import "time"

// Player is the playback-engine handle bound to a guild's voice connection.
//
// Play must mark the player busy before it returns; the actual fetch and
// streaming happen asynchronously and finish (on success or failure) with an
// idle notification delivered back to the registry via OnQueueUpdate.
type Player interface {
	Play(url string)
	IsIdle() bool
}

// Session tracks playback state for a single guild. All fields are guarded
// by the owning Registry's mutex; sessions are never shared outside it.
type Session struct {
	queue     []string
	player    Player
	idleTimer *time.Timer
	timerGen  int
}
