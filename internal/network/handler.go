package network

import "time"

// EventHandler receives hub events. Every method runs on the hub goroutine,
// so implementations may own their state without locking.
type EventHandler interface {
	// OnConnect is called once a client has logged in.
	OnConnect(c *Client)

	// OnDisconnect is called after the client's transport failed or closed.
	OnDisconnect(c *Client)

	// OnMessage is called for every envelope drained on a tick.
	OnMessage(c *Client, m Message)

	// OnTick runs after each tick's messages have been handled.
	OnTick(now time.Time)
}
