package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/priceparty/priceparty-server/internal/catalog"
	"github.com/priceparty/priceparty-server/internal/game"
)

// Timing holds the wall-clock knobs of a game. Production values live in the
// config package; tests shrink them to milliseconds.
type Timing struct {
	// RoundDuration is the guessing countdown per round.
	RoundDuration time.Duration
	// ReadyDuration is the between-rounds ready-check countdown.
	ReadyDuration time.Duration
	// ReconnectGrace is how long a disconnected player keeps their seat.
	ReconnectGrace time.Duration
	// FetchTimeout bounds the external product fetch.
	FetchTimeout time.Duration
	// LobbyTTL is the idle age after which cleanup discards a lobby.
	LobbyTTL time.Duration
}

// internal hub messages beyond client commands
type (
	registerMsg   struct{ client *Client }
	clientGoneMsg struct{ client *Client }
	clientCmdMsg  struct {
		client *Client
		cmd    *Command
	}
	fetchResultMsg struct {
		code     string
		products []game.Product
		err      error
	}
	cleanupMsg  struct{}
	snapshotMsg struct {
		code  string
		reply chan snapshotReply
	}
)

type snapshotReply struct {
	snap *game.Snapshot
	err  error
}

// Hub executes every game mutation on a single goroutine: client commands,
// timer callbacks, fetch results, and cleanup all funnel through one inbox,
// which serializes access to the lobby aggregates exactly like the original
// event-loop model.
type Hub struct {
	inbox   chan any
	store   *game.Store
	source  catalog.Source
	timing  Timing
	rooms   map[string]*Room
	clients map[string]*Client
	timers  *timerRegistry
	log     *zerolog.Logger
}

// NewHub builds a hub around a lobby store and a product source.
func NewHub(store *game.Store, source catalog.Source, timing Timing, logger *zerolog.Logger) *Hub {
	inbox := make(chan any, 256)
	return &Hub{
		inbox:   inbox,
		store:   store,
		source:  source,
		timing:  timing,
		rooms:   make(map[string]*Room),
		clients: make(map[string]*Client),
		timers:  newTimerRegistry(inbox),
		log:     logger,
	}
}

// RegisterClient announces a new connection to the hub. A forwarder goroutine
// pumps the client's commands into the hub inbox; closing Commands (via
// UnregisterClient) ends it and reports the disconnect.
func (h *Hub) RegisterClient(c *Client) {
	h.inbox <- registerMsg{client: c}
	go func() {
		for cmd := range c.Commands {
			h.inbox <- clientCmdMsg{client: c, cmd: cmd}
		}
		h.inbox <- clientGoneMsg{client: c}
	}()
}

// UnregisterClient signals that a connection is gone. The transport must not
// send on Commands afterwards.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

// CleanupStaleLobbies asks the hub to garbage-collect idle lobbies. Safe to
// call from any goroutine; typically driven by the app-level ticker.
func (h *Hub) CleanupStaleLobbies() {
	h.inbox <- cleanupMsg{}
}

// Snapshot returns a lobby view without racing the hub loop.
func (h *Hub) Snapshot(code string) (*game.Snapshot, error) {
	reply := make(chan snapshotReply, 1)
	h.inbox <- snapshotMsg{code: code, reply: reply}
	r := <-reply
	return r.snap, r.err
}

// Run processes hub messages until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.inbox:
			switch msg := m.(type) {
			case registerMsg:
				h.clients[msg.client.ID] = msg.client
			case clientGoneMsg:
				h.handleDisconnect(msg.client)
			case clientCmdMsg:
				h.handleCommand(msg.client, msg.cmd)
			case timerTick:
				h.handleTick(msg)
			case timerExpired:
				h.handleExpired(msg)
			case fetchResultMsg:
				h.handleFetchResult(msg)
			case cleanupMsg:
				h.handleCleanup()
			case snapshotMsg:
				snap, err := h.store.Snapshot(msg.code)
				msg.reply <- snapshotReply{snap: snap, err: err}
			}
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateLobby:
		h.handleCreate(c, cmd)
	case CommandJoinLobby:
		h.handleJoin(c, cmd)
	case CommandLeaveLobby:
		h.handleLeave(c, cmd)
	case CommandUpdateSettings:
		h.handleUpdateSettings(c, cmd)
	case CommandKickPlayer:
		h.handleKick(c, cmd)
	case CommandStartGame:
		h.handleStartGame(c, cmd)
	case CommandStartWithProducts:
		h.handleStartWithProducts(c, cmd)
	case CommandSubmitGuess:
		h.handleGuess(c, cmd)
	case CommandPlayerReady:
		h.handleReady(c, cmd)
	case CommandResetGame:
		h.handleReset(c, cmd)
	default:
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) handleCreate(c *Client, cmd *Command) {
	rounds := 0
	if cmd.Rounds != nil {
		rounds = *cmd.Rounds
	}
	source := ""
	if cmd.ProductSource != nil {
		source = *cmd.ProductSource
	}

	snap := h.store.Create(rounds, cmd.Name, c.ID, source, cmd.ClientID)
	c.Name = cmd.Name
	c.lobby = snap.Code

	room := NewRoom(snap.Code)
	room.AddClient(c)
	h.rooms[snap.Code] = room

	h.log.Info().Str("code", snap.Code).Str("host", cmd.Name).Msg("lobby created")
	h.broadcastState(snap.Code, snap)
}

func (h *Hub) handleJoin(c *Client, cmd *Command) {
	res, err := h.store.Join(cmd.Code, cmd.Name, c.ID, cmd.ClientID)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	c.Name = res.PlayerName
	c.lobby = cmd.Code

	room := h.rooms[cmd.Code]
	if room == nil {
		room = NewRoom(cmd.Code)
		h.rooms[cmd.Code] = room
	}
	room.AddClient(c)

	if res.Reconnect {
		// The seat changed session ids; stop the pending removal and drop
		// the stale connection from the room if it is still around.
		h.timers.cancelGrace(cmd.Code, res.OldSessionID)
		if old := h.clients[res.OldSessionID]; old != nil && old != c {
			room.RemoveClient(old)
			old.lobby = ""
		}
		h.log.Info().Str("code", cmd.Code).Str("player", res.PlayerName).Msg("player reconnected")
	} else {
		h.log.Info().Str("code", cmd.Code).Str("player", res.PlayerName).Msg("player joined")
	}

	h.broadcastState(cmd.Code, res.Lobby)
}

func (h *Hub) handleLeave(c *Client, cmd *Command) {
	code := cmd.Code
	if code == "" {
		code = c.lobby
	}
	h.removePlayer(code, c.ID, nil)
	if room := h.rooms[code]; room != nil {
		room.RemoveClient(c)
	}
	c.lobby = ""
}

// removePlayer applies a leave/kick/grace-expiry removal and its fallout.
func (h *Hub) removePlayer(code, sessionID string, kicker *Client) {
	res, err := h.store.Leave(code, sessionID)
	if err != nil {
		if kicker != nil {
			kicker.send(&Event{Kind: EventError, Code: code, Error: coreErrorFrom(err)})
		}
		return
	}
	h.timers.cancelGrace(code, sessionID)

	if res.Deleted {
		// Last player out: the lobby is gone, and with it every countdown.
		h.timers.cancelAll(code)
		delete(h.rooms, code)
		h.log.Info().Str("code", code).Msg("lobby emptied and deleted")
		return
	}
	if res.NewHostID != "" {
		h.log.Info().Str("code", code).Str("host", res.NewHostID).Msg("host migrated")
	}
	h.broadcastState(code, res.Lobby)
	h.checkRoundCompletion(code)
}

// checkRoundCompletion re-evaluates the current phase's completion condition.
// Needed after any change to the player set: when the last holdout leaves, the
// remaining players should not sit out the rest of the countdown.
func (h *Hub) checkRoundCompletion(code string) {
	if h.store.AllGuessed(code) {
		h.endRound(code)
	} else if h.store.AllReady(code) {
		h.advanceRound(code)
	}
}

func (h *Hub) handleUpdateSettings(c *Client, cmd *Command) {
	snap, err := h.store.UpdateSettings(cmd.Code, c.ID, cmd.Rounds, cmd.ProductSource)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	h.broadcastState(cmd.Code, snap)
}

func (h *Hub) handleKick(c *Client, cmd *Command) {
	res, err := h.store.Kick(cmd.Code, c.ID, cmd.TargetID)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	h.timers.cancelGrace(cmd.Code, cmd.TargetID)

	// Tell the kicked client explicitly so it does not treat the removal as
	// its own disconnect and try to reconnect.
	if target := h.clients[cmd.TargetID]; target != nil {
		target.send(&Event{Kind: EventPlayerKicked, Code: cmd.Code})
		if room := h.rooms[cmd.Code]; room != nil {
			room.RemoveClient(target)
		}
		target.lobby = ""
	}
	if res.Deleted {
		h.timers.cancelAll(cmd.Code)
		delete(h.rooms, cmd.Code)
		return
	}
	if res.Lobby != nil {
		h.broadcastState(cmd.Code, res.Lobby)
		h.checkRoundCompletion(cmd.Code)
	}
}

func (h *Hub) handleStartGame(c *Client, cmd *Command) {
	snap, err := h.store.StartGame(cmd.Code, c.ID)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}

	h.broadcast(cmd.Code, &Event{
		Kind:        EventGameLoading,
		Code:        cmd.Code,
		Message:     "fetching products",
		TotalRounds: snap.Rounds,
	})
	h.broadcastState(cmd.Code, snap)

	// The fetch is the one asynchronous boundary in the game: it runs off
	// the loop and posts its outcome back into the inbox.
	go func(code, provider string, count int) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timing.FetchTimeout)
		defer cancel()
		products, err := h.source.Fetch(ctx, provider, count)
		h.inbox <- fetchResultMsg{code: code, products: products, err: err}
	}(cmd.Code, snap.ProductSource, snap.Rounds)
}

func (h *Hub) handleFetchResult(msg fetchResultMsg) {
	if msg.err != nil {
		h.log.Warn().Err(msg.err).Str("code", msg.code).Msg("product fetch failed")
		snap, err := h.store.AbortStart(msg.code)
		if err != nil {
			// Lobby vanished or moved on while we were fetching; drop it.
			return
		}
		h.broadcast(msg.code, &Event{
			Kind:  EventError,
			Code:  msg.code,
			Error: coreError(ErrCodeFetchFailed, "could not fetch products, try again"),
		})
		h.broadcastState(msg.code, snap)
		return
	}

	snap, err := h.store.StartWithProducts(msg.code, msg.products)
	if err != nil {
		if snap, abortErr := h.store.AbortStart(msg.code); abortErr == nil {
			h.broadcast(msg.code, &Event{Kind: EventError, Code: msg.code, Error: coreErrorFrom(err)})
			h.broadcastState(msg.code, snap)
		}
		return
	}
	h.beginRound(msg.code, snap)
}

func (h *Hub) handleStartWithProducts(c *Client, cmd *Command) {
	if _, err := h.store.StartGame(cmd.Code, c.ID); err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	snap, err := h.store.StartWithProducts(cmd.Code, cmd.Products)
	if err != nil {
		if snap, abortErr := h.store.AbortStart(cmd.Code); abortErr == nil {
			c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
			h.broadcastState(cmd.Code, snap)
		}
		return
	}
	h.beginRound(cmd.Code, snap)
}

// beginRound announces the current round's product and arms its countdown.
func (h *Hub) beginRound(code string, snap *game.Snapshot) {
	h.broadcast(code, &Event{
		Kind:        EventGameStarted,
		Code:        code,
		Product:     snap.CurrentProduct,
		Round:       snap.Round,
		TotalRounds: snap.Rounds,
	})
	h.broadcastState(code, snap)
	h.timers.startCountdown(code, roundTimer, h.timing.RoundDuration)
}

func (h *Hub) handleGuess(c *Client, cmd *Command) {
	snap, err := h.store.SubmitGuess(cmd.Code, c.ID, cmd.Guess)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	h.broadcastState(cmd.Code, snap)

	// All players answered before the clock ran out: the round ends early.
	if h.store.AllGuessed(cmd.Code) {
		h.endRound(cmd.Code)
	}
}

// endRound closes the guessing phase: the round timer is cancelled first so
// the completion race (all guessed vs. clock expiry) settles exactly once.
func (h *Hub) endRound(code string) {
	h.timers.cancel(code, roundTimer)

	result, err := h.store.CalculateRoundResults(code)
	if err != nil {
		h.log.Warn().Err(err).Str("code", code).Msg("round result computation rejected")
		return
	}
	h.broadcast(code, &Event{
		Kind:        EventRoundResults,
		Code:        code,
		Results:     result,
		Leaderboard: result.Leaderboard,
	})
	if snap, err := h.store.Snapshot(code); err == nil {
		h.broadcastState(code, snap)
	}
	h.timers.startCountdown(code, readyTimer, h.timing.ReadyDuration)
}

func (h *Hub) handleReady(c *Client, cmd *Command) {
	snap, err := h.store.SetReady(cmd.Code, c.ID)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	h.broadcastState(cmd.Code, snap)

	if h.store.AllReady(cmd.Code) {
		h.advanceRound(cmd.Code)
	}
}

// advanceRound closes the ready phase and either starts the next round's
// countdown or ends the game.
func (h *Hub) advanceRound(code string) {
	h.timers.cancel(code, readyTimer)

	snap, err := h.store.NextRound(code)
	if err != nil {
		h.log.Warn().Err(err).Str("code", code).Msg("round advance rejected")
		return
	}
	if snap.Status == game.StatusFinished {
		h.timers.cancelAll(code)
		var board []game.LeaderboardEntry
		if snap.LastRound != nil {
			board = snap.LastRound.Leaderboard
		}
		h.broadcast(code, &Event{Kind: EventGameEnded, Code: code, Leaderboard: board})
		h.broadcastState(code, snap)
		h.log.Info().Str("code", code).Msg("game ended")
		return
	}
	h.beginRound(code, snap)
}

func (h *Hub) handleReset(c *Client, cmd *Command) {
	snap, err := h.store.Reset(cmd.Code, c.ID)
	if err != nil {
		c.send(&Event{Kind: EventError, Code: cmd.Code, Error: coreErrorFrom(err)})
		return
	}
	h.timers.cancelAll(cmd.Code)
	h.broadcastState(cmd.Code, snap)
}

func (h *Hub) handleTick(msg timerTick) {
	if !h.timers.current(msg.code, msg.kind, msg.seq, "") {
		return
	}
	kind := EventRoundTick
	if msg.kind == readyTimer {
		kind = EventReadyTick
	}
	h.broadcast(msg.code, &Event{Kind: kind, Code: msg.code, TimeLeft: msg.timeLeft})
}

func (h *Hub) handleExpired(msg timerExpired) {
	if !h.timers.current(msg.code, msg.kind, msg.seq, msg.session) {
		// A stale countdown lost the race against cancellation.
		return
	}
	switch msg.kind {
	case roundTimer:
		h.endRound(msg.code)
	case readyTimer:
		h.advanceRound(msg.code)
	case graceTimer:
		h.timers.cancelGrace(msg.code, msg.session)
		h.log.Info().Str("code", msg.code).Str("session", msg.session).Msg("reconnect grace expired")
		h.removePlayer(msg.code, msg.session, nil)
	}
}

func (h *Hub) handleDisconnect(c *Client) {
	delete(h.clients, c.ID)
	code := c.lobby
	if code != "" {
		if room := h.rooms[code]; room != nil {
			room.RemoveClient(c)
		}
		// Keep the seat: the player gets a grace window to reconnect.
		if snap, err := h.store.MarkDisconnected(code, c.ID); err == nil {
			h.broadcastState(code, snap)
			h.timers.startGrace(code, c.ID, h.timing.ReconnectGrace)
		}
	}
	close(c.Events)
}

func (h *Hub) handleCleanup() {
	removed := h.store.CleanupStale(h.timing.LobbyTTL)
	for _, r := range removed {
		h.timers.cancelAll(r.Code)
		if room := h.rooms[r.Code]; room != nil {
			room.Broadcast(&Event{
				Kind:  EventError,
				Code:  r.Code,
				Error: coreError(ErrCodeLobbyNotFound, "lobby expired"),
			})
			delete(h.rooms, r.Code)
		}
		h.log.Info().Str("code", r.Code).Msg("stale lobby removed")
	}
}

// broadcastState sends the canonical lobby snapshot to the whole room.
func (h *Hub) broadcastState(code string, snap *game.Snapshot) {
	h.broadcast(code, &Event{Kind: EventLobbyState, Code: code, Lobby: snap})
}

func (h *Hub) broadcast(code string, ev *Event) {
	if room := h.rooms[code]; room != nil {
		room.Broadcast(ev)
	}
}
