package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/priceparty/priceparty-server/internal/catalog"
	"github.com/priceparty/priceparty-server/internal/game"
)

const eventWait = 2 * time.Second

// testTiming keeps the countdowns far away so only the paths under test fire.
func testTiming() Timing {
	return Timing{
		RoundDuration:  time.Minute,
		ReadyDuration:  time.Minute,
		ReconnectGrace: time.Minute,
		FetchTimeout:   time.Second,
		LobbyTTL:       time.Hour,
	}
}

func newTestHub(t *testing.T, source catalog.Source, timing Timing) *Hub {
	t.Helper()
	if source == nil {
		source = catalog.NewStaticSource(catalog.DemoProducts)
	}
	logger := zerolog.Nop()
	h := NewHub(game.NewStore(), source, timing, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func connect(h *Hub, id string) *Client {
	c := NewClient(id)
	h.RegisterClient(c)
	return c
}

// nextEvent reads one event, failing on timeout or a closed channel.
func nextEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(eventWait):
		t.Fatalf("timed out waiting for an event for %s", c.ID)
		return nil
	}
}

// mustEvent drains events until one of the wanted kind arrives.
func mustEvent(t *testing.T, c *Client, kind EventKind) *Event {
	t.Helper()
	deadline := time.After(eventWait)
	for {
		select {
		case ev, ok := <-c.Events:
			require.True(t, ok, "event channel closed while waiting for kind %d", kind)
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d for %s", kind, c.ID)
			return nil
		}
	}
}

// mustState drains events until a lobby state satisfying ok arrives.
func mustState(t *testing.T, c *Client, ok func(*game.Snapshot) bool) *game.Snapshot {
	t.Helper()
	deadline := time.After(eventWait)
	for {
		select {
		case ev, open := <-c.Events:
			require.True(t, open, "event channel closed while waiting for lobby state")
			if ev.Kind == EventLobbyState && ok(ev.Lobby) {
				return ev.Lobby
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a matching lobby state for %s", c.ID)
			return nil
		}
	}
}

func createLobby(t *testing.T, h *Hub, host *Client, rounds int, source string) string {
	t.Helper()
	host.Commands <- &Command{
		Kind:          CommandCreateLobby,
		Name:          host.ID,
		Rounds:        &rounds,
		ProductSource: &source,
	}
	ev := mustEvent(t, host, EventLobbyState)
	require.NotNil(t, ev.Lobby)
	require.Equal(t, host.ID, ev.Lobby.HostID)
	return ev.Lobby.Code
}

func joinLobby(t *testing.T, code string, c *Client) {
	t.Helper()
	c.Commands <- &Command{Kind: CommandJoinLobby, Code: code, Name: c.ID}
	mustEvent(t, c, EventLobbyState)
}

func fixedProducts(n int) []game.Product {
	ps := make([]game.Product, n)
	for i := range ps {
		ps[i] = game.Product{
			ID:       "fix-" + string(rune('a'+i)),
			Name:     "fixture",
			Price:    float64(50 * (i + 1)),
			ImageURL: "https://img.example/fix.jpg",
		}
	}
	return ps
}
