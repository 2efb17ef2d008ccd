package core

// Client is one websocket session as seen by the core layer. ID doubles as
// the player's session id inside a lobby.
type Client struct {
	ID       string
	Name     string
	Commands chan *Command
	Events   chan *Event

	// lobby is the code of the lobby this client currently belongs to.
	// Touched only by the hub loop.
	lobby string
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
	}
}

func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
