package game

import "time"

// Status is the lobby lifecycle state.
type Status string

const (
	// StatusWaiting: pre-game, players may join and the host may change settings.
	StatusWaiting Status = "waiting"
	// StatusLoading: startGame accepted, waiting on the product fetch.
	StatusLoading Status = "loading"
	// StatusPlaying: a round is in progress or between results and next round.
	StatusPlaying Status = "playing"
	// StatusFinished: all rounds played, final leaderboard available.
	StatusFinished Status = "finished"
)

// Settings are the host-configurable options, fixed for the duration of a game.
type Settings struct {
	Rounds        int
	ProductSource string
}

// Lobby is the central aggregate for one game session. It is owned by the
// Store and must only be mutated through Store operations; the Store serializes
// access, so Lobby itself carries no lock.
type Lobby struct {
	Code      string
	Players   []*Player // join order, host normally first
	HostID    string
	Status    Status
	Settings  Settings
	Round     int // zero-based, meaningful only while Status != waiting
	Products  []Product
	Guesses   map[string]float64 // session id -> guess, current round only
	Ready     map[string]bool    // session id -> ready, between results and next round
	LastRound *RoundResult       // retained so late (re)connects can resync
	CreatedAt time.Time
}

// CurrentProduct returns the item for the round in progress, or nil.
func (l *Lobby) CurrentProduct() *Product {
	if l.Status != StatusPlaying || l.Round >= len(l.Products) {
		return nil
	}
	return &l.Products[l.Round]
}

func (l *Lobby) playerBySession(sessionID string) *Player {
	for _, p := range l.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

func (l *Lobby) playerByClient(clientID string) *Player {
	if clientID == "" {
		return nil
	}
	for _, p := range l.Players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

func (l *Lobby) playerByName(name string) *Player {
	for _, p := range l.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// roundScored reports whether results were already computed for the round in
// progress. It separates the two phases of a playing round: guessing closes
// once the round is scored, and readying up only opens after.
func (l *Lobby) roundScored() bool {
	return l.LastRound != nil && l.LastRound.Round == l.Round
}

func (l *Lobby) allGuessed() bool {
	if len(l.Players) == 0 {
		return false
	}
	for _, p := range l.Players {
		if _, ok := l.Guesses[p.SessionID]; !ok {
			return false
		}
	}
	return true
}

func (l *Lobby) allReady() bool {
	if len(l.Players) == 0 {
		return false
	}
	for _, p := range l.Players {
		if !l.Ready[p.SessionID] {
			return false
		}
	}
	return true
}

// PlayerView is the per-player slice of a Snapshot. Guess values are withheld
// until results so a broadcast cannot leak another player's answer mid-round.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Score     int    `json:"score"`
	Connected bool   `json:"isConnected"`
	Guessed   bool   `json:"hasGuessed"`
	Ready     bool   `json:"isReady"`
}

// Snapshot is the immutable view of a Lobby broadcast to clients.
type Snapshot struct {
	Code           string       `json:"code"`
	Status         Status       `json:"status"`
	HostID         string       `json:"hostId"`
	Players        []PlayerView `json:"players"`
	Rounds         int          `json:"roundsTotal"`
	ProductSource  string       `json:"productSource"`
	Round          int          `json:"currentRoundIndex"`
	CurrentProduct *Product     `json:"currentProduct,omitempty"`
	LastRound      *RoundResult `json:"lastRoundResults,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// snapshot builds a detached copy safe to hand to other goroutines.
func (l *Lobby) snapshot() *Snapshot {
	players := make([]PlayerView, 0, len(l.Players))
	for _, p := range l.Players {
		_, guessed := l.Guesses[p.SessionID]
		players = append(players, PlayerView{
			ID:        p.SessionID,
			Name:      p.Name,
			IsHost:    p.IsHost,
			Score:     p.Score,
			Connected: p.Connected,
			Guessed:   guessed,
			Ready:     l.Ready[p.SessionID],
		})
	}

	var product *Product
	if cp := l.CurrentProduct(); cp != nil {
		copied := *cp
		product = &copied
	}

	return &Snapshot{
		Code:           l.Code,
		Status:         l.Status,
		HostID:         l.HostID,
		Players:        players,
		Rounds:         l.Settings.Rounds,
		ProductSource:  l.Settings.ProductSource,
		Round:          l.Round,
		CurrentProduct: product,
		LastRound:      l.LastRound,
		CreatedAt:      l.CreatedAt,
	}
}
