package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeCreate            = "lobby:create"
	InboundTypeJoin              = "lobby:join"
	InboundTypeLeave             = "lobby:leave"
	InboundTypeUpdateSettings    = "lobby:update-settings"
	InboundTypeKick              = "player:kick"
	InboundTypeStartGame         = "game:start"
	InboundTypeStartWithProducts = "game:start-with-products"
	InboundTypeGuess             = "guess:submit"
	InboundTypeReady             = "player:ready"
	InboundTypeReset             = "game:reset"
)

const (
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventLobbyState   = "lobby:state"
	EventGameLoading  = "game:loading"
	EventGameStarted  = "game:started"
	EventRoundUpdate  = "round:update"
	EventRoundResults = "round:results"
	EventReadyTimeout = "ready:timeout"
	EventGameEnded    = "game:ended"
	EventPlayerKicked = "player:kicked"
)

// CreateData opens a new lobby with the sender as host.
type CreateData struct {
	Rounds        int    `json:"roundsTotal"`
	PlayerName    string `json:"playerName"`
	ProductSource string `json:"productSource"`
	ClientID      string `json:"clientId"`
}

// JoinData joins an existing lobby by code.
type JoinData struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	ClientID   string `json:"clientId"`
}

// CodeData addresses a lobby with no further payload.
type CodeData struct {
	Code string `json:"code"`
}

// SettingsData patches lobby settings; absent fields are left unchanged.
type SettingsData struct {
	Code          string  `json:"code"`
	Rounds        *int    `json:"roundsTotal,omitempty"`
	ProductSource *string `json:"productSource,omitempty"`
}

// KickData removes another player from the lobby.
type KickData struct {
	Code     string `json:"code"`
	TargetID string `json:"targetPlayerId"`
}

// ProductData is a catalog item on the wire.
type ProductData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Provider string  `json:"provider,omitempty"`
}

// StartWithProductsData starts a game with a caller-supplied catalog.
type StartWithProductsData struct {
	Code     string        `json:"code"`
	Products []ProductData `json:"products"`
}

// GuessData submits a price guess for the current round.
type GuessData struct {
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// GameLoading is emitted while the product fetch is pending.
type GameLoading struct {
	Message     string `json:"message"`
	TotalRounds int    `json:"totalRounds"`
}

// GameStarted announces the current round's product.
type GameStarted struct {
	Product     *ProductData `json:"product"`
	RoundIndex  int          `json:"roundIndex"`
	TotalRounds int          `json:"totalRounds"`
}

// CountdownTick is a per-second round or ready countdown update.
type CountdownTick struct {
	TimeLeft int `json:"timeLeft"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
