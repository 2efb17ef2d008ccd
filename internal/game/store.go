package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// codeAlphabet avoids characters that are easy to misread when a code is
// shared out loud or retyped (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

const (
	// DefaultRounds is used when a create request leaves the count unset.
	DefaultRounds = 5
	maxRounds     = 20
)

// Store owns every active lobby, keyed by code. All state-machine operations
// go through it; the mutex serializes read-modify-write on a lobby so the
// aggregate never needs its own lock.
type Store struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	now     func() time.Time
}

// NewStore returns an empty lobby registry.
func NewStore() *Store {
	return &Store{
		lobbies: make(map[string]*Lobby),
		now:     time.Now,
	}
}

// Create builds a new lobby with the caller as its host.
func (s *Store) Create(rounds int, hostName, hostSessionID, productSource, hostClientID string) *Snapshot {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if rounds > maxRounds {
		rounds = maxRounds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newCode()
	lobby := &Lobby{
		Code:   code,
		HostID: hostSessionID,
		Status: StatusWaiting,
		Settings: Settings{
			Rounds:        rounds,
			ProductSource: productSource,
		},
		Guesses:   make(map[string]float64),
		Ready:     make(map[string]bool),
		CreatedAt: s.now(),
	}
	lobby.Players = append(lobby.Players, &Player{
		SessionID: hostSessionID,
		ClientID:  hostClientID,
		Name:      hostName,
		IsHost:    true,
		Connected: true,
		JoinedAt:  s.now(),
	})
	s.lobbies[code] = lobby
	return lobby.snapshot()
}

// newCode draws codes until one is free. The space (32^6) dwarfs any plausible
// number of concurrent lobbies, so collisions only ever cost a retry.
func (s *Store) newCode() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		code := string(buf)
		if _, taken := s.lobbies[code]; !taken {
			return code
		}
	}
}

// Snapshot returns the current view of a lobby.
func (s *Store) Snapshot(code string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return lobby.snapshot(), nil
}

// JoinResult reports how a join request was resolved.
type JoinResult struct {
	Lobby *Snapshot
	// Reconnect is true when an existing player was re-pointed at a new
	// session rather than a new player being appended.
	Reconnect bool
	// OldSessionID is the session the reconnecting player previously held.
	OldSessionID string
	// PlayerName is the resolved display name (differs from the request on
	// clientID-matched reconnects).
	PlayerName string
}

// Join adds a player to a lobby, or resumes an existing player's seat.
//
// Resolution order: an exact session match is an idempotent no-op; a clientID
// match resumes that player; failing both, a same-name match resumes that
// player. The name match is a heuristic for clients that lost their stable id;
// two players picking the same name collide here, a known product tradeoff.
// Brand-new joins are only accepted while the lobby is waiting.
func (s *Store) Join(code, name, sessionID, clientID string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return JoinResult{}, ErrLobbyNotFound
	}

	if p := lobby.playerBySession(sessionID); p != nil {
		p.Connected = true
		return JoinResult{Lobby: lobby.snapshot(), PlayerName: p.Name}, nil
	}

	prev := lobby.playerByClient(clientID)
	if prev == nil {
		prev = lobby.playerByName(name)
	}
	if prev != nil {
		old := prev.SessionID
		prev.SessionID = sessionID
		if clientID != "" {
			prev.ClientID = clientID
		}
		prev.Connected = true
		if lobby.HostID == old {
			lobby.HostID = sessionID
		}
		if g, had := lobby.Guesses[old]; had {
			delete(lobby.Guesses, old)
			lobby.Guesses[sessionID] = g
		}
		if r, had := lobby.Ready[old]; had {
			delete(lobby.Ready, old)
			lobby.Ready[sessionID] = r
		}
		return JoinResult{
			Lobby:        lobby.snapshot(),
			Reconnect:    true,
			OldSessionID: old,
			PlayerName:   prev.Name,
		}, nil
	}

	// Latecomers cannot enter a game in progress; rejoining above is the
	// only path into a non-waiting lobby.
	if lobby.Status != StatusWaiting {
		return JoinResult{}, ErrInvalidStatus
	}

	lobby.Players = append(lobby.Players, &Player{
		SessionID: sessionID,
		ClientID:  clientID,
		Name:      name,
		Connected: true,
		JoinedAt:  s.now(),
	})
	return JoinResult{Lobby: lobby.snapshot(), PlayerName: name}, nil
}

// LeaveResult reports the consequences of a player leaving.
type LeaveResult struct {
	Lobby *Snapshot // nil when the lobby was deleted
	// Deleted means the lobby emptied out and was removed; the caller must
	// cancel any timers still registered under its code.
	Deleted   bool
	NewHostID string
}

// Leave removes a player. The first remaining player by join order inherits
// the host seat; an emptied lobby is deleted outright.
func (s *Store) Leave(code, sessionID string) (LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(code, sessionID)
}

// Kick removes the target player on behalf of the host.
func (s *Store) Kick(code, hostSessionID, targetSessionID string) (LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return LeaveResult{}, ErrLobbyNotFound
	}
	if lobby.HostID != hostSessionID {
		return LeaveResult{}, ErrNotHost
	}
	return s.removeLocked(code, targetSessionID)
}

func (s *Store) removeLocked(code, sessionID string) (LeaveResult, error) {
	lobby, ok := s.lobbies[code]
	if !ok {
		return LeaveResult{}, ErrLobbyNotFound
	}

	idx := -1
	for i, p := range lobby.Players {
		if p.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return LeaveResult{}, ErrPlayerNotFound
	}

	wasHost := lobby.Players[idx].IsHost
	lobby.Players = append(lobby.Players[:idx], lobby.Players[idx+1:]...)
	delete(lobby.Guesses, sessionID)
	delete(lobby.Ready, sessionID)

	if len(lobby.Players) == 0 {
		delete(s.lobbies, code)
		return LeaveResult{Deleted: true}, nil
	}

	res := LeaveResult{}
	if wasHost {
		next := lobby.Players[0]
		next.IsHost = true
		lobby.HostID = next.SessionID
		res.NewHostID = next.SessionID
	}
	res.Lobby = lobby.snapshot()
	return res, nil
}

// MarkDisconnected flags a player as transport-dead without removing them,
// opening the reconnect grace window.
func (s *Store) MarkDisconnected(code, sessionID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	p := lobby.playerBySession(sessionID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	p.Connected = false
	return lobby.snapshot(), nil
}

// StartGame moves a waiting lobby into loading: scores zeroed, round reset,
// guesses cleared. Products arrive in a second step because fetching them is
// asynchronous.
func (s *Store) StartGame(code, hostSessionID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.HostID != hostSessionID {
		return nil, ErrNotHost
	}
	if lobby.Status != StatusWaiting {
		return nil, ErrInvalidStatus
	}

	lobby.Status = StatusLoading
	lobby.Round = 0
	lobby.Products = nil
	lobby.Guesses = make(map[string]float64)
	lobby.Ready = make(map[string]bool)
	lobby.LastRound = nil
	for _, p := range lobby.Players {
		p.Score = 0
	}
	return lobby.snapshot(), nil
}

// StartWithProducts validates the supplied catalog items and begins play.
// The lobby must be loading; validation runs before any mutation, so a bad
// batch leaves the lobby untouched for the caller to abort or retry.
func (s *Store) StartWithProducts(code string, products []Product) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.Status != StatusLoading {
		return nil, ErrInvalidStatus
	}

	rounds := lobby.Settings.Rounds
	if len(products) < rounds {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrTooFewProducts, rounds, len(products))
	}
	selected := make([]Product, rounds)
	copy(selected, products[:rounds])
	for i, p := range selected {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
	}

	lobby.Products = selected
	lobby.Status = StatusPlaying
	lobby.Round = 0
	return lobby.snapshot(), nil
}

// AbortStart returns a loading lobby to waiting after a failed product fetch
// or a rejected product batch, so the host can retry.
func (s *Store) AbortStart(code string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.Status != StatusLoading {
		return nil, ErrInvalidStatus
	}
	lobby.Status = StatusWaiting
	lobby.Products = nil
	return lobby.snapshot(), nil
}

// SubmitGuess records (or overwrites) a player's guess for the current round.
func (s *Store) SubmitGuess(code, sessionID string, value float64) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.Status != StatusPlaying {
		return nil, ErrInvalidStatus
	}
	if lobby.roundScored() {
		return nil, fmt.Errorf("%w: guessing is closed for this round", ErrInvalidStatus)
	}
	if lobby.playerBySession(sessionID) == nil {
		return nil, ErrPlayerNotFound
	}
	if value <= 0 {
		return nil, ErrInvalidGuess
	}
	lobby.Guesses[sessionID] = value
	return lobby.snapshot(), nil
}

// AllGuessed reports whether every current player has a guess in. Only
// meaningful during the guessing phase; once the round is scored it is false
// regardless of the retained guesses.
func (s *Store) AllGuessed(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[code]
	return ok && lobby.Status == StatusPlaying && !lobby.roundScored() && lobby.allGuessed()
}

// CalculateRoundResults scores the current round, folds the round scores into
// each player's cumulative total, and retains the result on the lobby. This is
// the only place cumulative scores change during a game.
func (s *Store) CalculateRoundResults(code string) (*RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	product := lobby.CurrentProduct()
	if product == nil {
		return nil, ErrInvalidStatus
	}
	// Cumulative totals change here and nowhere else, so a round scores once.
	if lobby.roundScored() {
		return nil, fmt.Errorf("%w: round already scored", ErrInvalidStatus)
	}

	entries := make([]GuessEntry, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		e := GuessEntry{
			SessionID: p.SessionID,
			Name:      p.Name,
			PrevTotal: p.Score,
		}
		if g, has := lobby.Guesses[p.SessionID]; has {
			e.Guess = g
			e.HasGuess = true
		}
		entries = append(entries, e)
	}

	results := ScoreRound(entries, product.Price)
	for _, r := range results {
		if p := lobby.playerBySession(r.PlayerID); p != nil {
			p.Score = r.TotalScore
		}
	}

	lobby.LastRound = &RoundResult{
		Round:       lobby.Round,
		Product:     *product,
		RealPrice:   product.Price,
		Entries:     results,
		Leaderboard: Leaderboard(lobby.Players),
	}
	return lobby.LastRound, nil
}

// SetReady marks a player ready for the next round.
func (s *Store) SetReady(code, sessionID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.Status != StatusPlaying {
		return nil, ErrInvalidStatus
	}
	if !lobby.roundScored() {
		return nil, fmt.Errorf("%w: round results are not in yet", ErrInvalidStatus)
	}
	if lobby.playerBySession(sessionID) == nil {
		return nil, ErrPlayerNotFound
	}
	lobby.Ready[sessionID] = true
	return lobby.snapshot(), nil
}

// AllReady reports whether every current player has readied up. Only
// meaningful between round results and the next round.
func (s *Store) AllReady(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[code]
	return ok && lobby.Status == StatusPlaying && lobby.roundScored() && lobby.allReady()
}

// NextRound advances to the next round, or finishes the game when the rounds
// are exhausted. Guesses and ready flags are cleared either way.
func (s *Store) NextRound(code string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.Status != StatusPlaying {
		return nil, ErrInvalidStatus
	}

	lobby.Round++
	lobby.Guesses = make(map[string]float64)
	lobby.Ready = make(map[string]bool)
	if lobby.Round >= lobby.Settings.Rounds {
		lobby.Round = lobby.Settings.Rounds
		lobby.Status = StatusFinished
	}
	return lobby.snapshot(), nil
}

// Reset returns a lobby to the waiting state for another game with the same
// players. Host-only; valid whenever a game has started.
func (s *Store) Reset(code, hostSessionID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.HostID != hostSessionID {
		return nil, ErrNotHost
	}
	if lobby.Status == StatusWaiting {
		return nil, ErrInvalidStatus
	}

	lobby.Status = StatusWaiting
	lobby.Round = 0
	lobby.Products = nil
	lobby.Guesses = make(map[string]float64)
	lobby.Ready = make(map[string]bool)
	lobby.LastRound = nil
	for _, p := range lobby.Players {
		p.Score = 0
	}
	return lobby.snapshot(), nil
}

// UpdateSettings patches host-configurable options. Only allowed before a
// game starts; changes apply to the next StartGame.
func (s *Store) UpdateSettings(code, hostSessionID string, rounds *int, productSource *string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if lobby.HostID != hostSessionID {
		return nil, ErrNotHost
	}
	if lobby.Status != StatusWaiting {
		return nil, ErrInvalidStatus
	}

	if rounds != nil {
		r := *rounds
		if r <= 0 || r > maxRounds {
			return nil, fmt.Errorf("%w: rounds must be in 1..%d", ErrInvalidStatus, maxRounds)
		}
		lobby.Settings.Rounds = r
	}
	if productSource != nil {
		lobby.Settings.ProductSource = *productSource
	}
	return lobby.snapshot(), nil
}

// RemovedLobby identifies a lobby discarded by cleanup, so callers can cancel
// timers and drop broadcast rooms registered under its code.
type RemovedLobby struct {
	Code      string
	ClientIDs []string
}

// CleanupStale deletes lobbies older than ttl and reports what was removed.
func (s *Store) CleanupStale(ttl time.Duration) []RemovedLobby {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	var removed []RemovedLobby
	for code, lobby := range s.lobbies {
		if lobby.CreatedAt.After(cutoff) {
			continue
		}
		r := RemovedLobby{Code: code}
		for _, p := range lobby.Players {
			r.ClientIDs = append(r.ClientIDs, p.ClientID)
		}
		removed = append(removed, r)
		delete(s.lobbies, code)
	}
	return removed
}

// Len reports the number of active lobbies.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lobbies)
}

// HostOf reports the current host session for a lobby.
func (s *Store) HostOf(code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return "", ErrLobbyNotFound
	}
	return lobby.HostID, nil
}

// SettingsOf returns the configured settings for a lobby.
func (s *Store) SettingsOf(code string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return Settings{}, ErrLobbyNotFound
	}
	return lobby.Settings, nil
}
