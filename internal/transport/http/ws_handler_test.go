package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceparty/priceparty-server/internal/catalog"
	"github.com/priceparty/priceparty-server/internal/config"
	"github.com/priceparty/priceparty-server/internal/core"
	"github.com/priceparty/priceparty-server/internal/game"
)

// outboundFrame mirrors proto.Outbound with a raw payload for assertions.
type outboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()
	source := catalog.NewStaticSource(catalog.DemoProducts)
	hub := core.NewHub(game.NewStore(), source, core.Timing{
		RoundDuration:  time.Minute,
		ReadyDuration:  time.Minute,
		ReconnectGrace: time.Minute,
		FetchTimeout:   time.Second,
		LobbyTTL:       time.Hour,
	}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := NewServer(hub, config.Default(), &logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var frame outboundFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	return frame
}

func writeFrame(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": msgType,
		"data": json.RawMessage(payload),
	}))
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := stdhttp.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestGetLobbyNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := stdhttp.Get(ts.URL + "/api/lobbies/NOSUCH")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
}

func TestCreateLobbyOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, "lobby:create", map[string]any{
		"playerName":  "host",
		"roundsTotal": 3,
	})

	frame := readFrame(t, conn)
	assert.Equal(t, "event", frame.Type)
	assert.Equal(t, "lobby:state", frame.Event)

	var state struct {
		Code    string `json:"code"`
		Status  string `json:"status"`
		Players []struct {
			Name   string `json:"name"`
			IsHost bool   `json:"isHost"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &state))
	assert.Len(t, state.Code, 6)
	assert.Equal(t, "waiting", state.Status)
	require.Len(t, state.Players, 1)
	assert.True(t, state.Players[0].IsHost)
	assert.Equal(t, "host", state.Players[0].Name)

	// The REST surface sees the same lobby.
	resp, err := stdhttp.Get(ts.URL + "/api/lobbies/" + state.Code)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), state.Code)
}

func TestTwoClientsShareLobbyState(t *testing.T) {
	ts := newTestServer(t)
	host := dialWS(t, ts)
	guest := dialWS(t, ts)

	writeFrame(t, host, "lobby:create", map[string]any{"playerName": "host"})
	created := readFrame(t, host)
	var state struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &state))

	writeFrame(t, guest, "lobby:join", map[string]any{
		"code":       state.Code,
		"playerName": "guest",
	})

	joined := readFrame(t, guest)
	assert.Equal(t, "lobby:state", joined.Event)

	// The host hears the join too.
	update := readFrame(t, host)
	assert.Equal(t, "lobby:state", update.Event)
	var updated struct {
		Players []struct {
			Name string `json:"name"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(update.Data, &updated))
	assert.Len(t, updated.Players, 2)
}

// readUntilEvent discards frames until one carries the named event.
func readUntilEvent(t *testing.T, conn *websocket.Conn, event string) outboundFrame {
	t.Helper()
	for i := 0; i < 20; i++ {
		frame := readFrame(t, conn)
		if frame.Event == event {
			return frame
		}
	}
	t.Fatalf("never received event %q", event)
	return outboundFrame{}
}

func TestRoundOverTheWire(t *testing.T) {
	ts := newTestServer(t)
	host := dialWS(t, ts)
	guest := dialWS(t, ts)

	writeFrame(t, host, "lobby:create", map[string]any{"playerName": "host", "roundsTotal": 1})
	created := readUntilEvent(t, host, "lobby:state")
	var state struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &state))

	writeFrame(t, guest, "lobby:join", map[string]any{"code": state.Code, "playerName": "guest"})
	readUntilEvent(t, guest, "lobby:state")

	writeFrame(t, host, "game:start-with-products", map[string]any{
		"code": state.Code,
		"products": []map[string]any{
			{"id": "p1", "name": "kettle", "price": 35.0, "imageUrl": "https://img.example/kettle.jpg"},
		},
	})

	started := readUntilEvent(t, host, "game:started")
	var round struct {
		Product struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"product"`
		RoundIndex  int `json:"roundIndex"`
		TotalRounds int `json:"totalRounds"`
	}
	require.NoError(t, json.Unmarshal(started.Data, &round))
	assert.Equal(t, "kettle", round.Product.Name)
	assert.Equal(t, 0, round.RoundIndex)
	assert.Equal(t, 1, round.TotalRounds)
	readUntilEvent(t, guest, "game:started")

	writeFrame(t, host, "guess:submit", map[string]any{"code": state.Code, "value": 35.0})
	writeFrame(t, guest, "guess:submit", map[string]any{"code": state.Code, "value": 70.0})

	results := readUntilEvent(t, host, "round:results")
	var payload struct {
		RealPrice float64 `json:"realPrice"`
		Results   []struct {
			Name       string `json:"name"`
			RoundScore int    `json:"roundScore"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(results.Data, &payload))
	assert.Equal(t, 35.0, payload.RealPrice)
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "host", payload.Results[0].Name)
	assert.Equal(t, 1150, payload.Results[0].RoundScore)
}

func TestBadMessageKeepsConnectionAlive(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, "no:such:message", map[string]any{})
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	require.NotNil(t, frame.Error)
	assert.Equal(t, "invalid_message", frame.Error.Code)

	// The same connection still works afterwards.
	writeFrame(t, conn, "lobby:create", map[string]any{"playerName": "resilient"})
	next := readFrame(t, conn)
	assert.Equal(t, "lobby:state", next.Event)
}

func TestValidationErrorsAreSoft(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, "lobby:create", map[string]any{"playerName": ""})
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	require.NotNil(t, frame.Error)
	assert.Equal(t, core.ErrCodeBadRequest, frame.Error.Code)
}
