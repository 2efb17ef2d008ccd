package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceparty/priceparty-server/internal/core"
	"github.com/priceparty/priceparty-server/internal/proto"
)

func inbound(msgType, data string) proto.Inbound {
	return proto.Inbound{Type: msgType, Data: json.RawMessage(data)}
}

func TestInboundToCommand(t *testing.T) {
	cases := []struct {
		name     string
		in       proto.Inbound
		wantKind core.CommandKind
		wantErr  string // proto error code, empty when the command is valid
	}{
		{
			name:     "create",
			in:       inbound("lobby:create", `{"playerName":"ann","roundsTotal":4}`),
			wantKind: core.CommandCreateLobby,
		},
		{
			name:    "create without name",
			in:      inbound("lobby:create", `{"roundsTotal":4}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:     "join",
			in:       inbound("lobby:join", `{"code":"ABC234","playerName":"bob"}`),
			wantKind: core.CommandJoinLobby,
		},
		{
			name:    "join without code",
			in:      inbound("lobby:join", `{"playerName":"bob"}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:     "leave tolerates empty payload",
			in:       proto.Inbound{Type: "lobby:leave"},
			wantKind: core.CommandLeaveLobby,
		},
		{
			name:     "ready",
			in:       inbound("player:ready", `{"code":"ABC234"}`),
			wantKind: core.CommandPlayerReady,
		},
		{
			name:    "ready without code",
			in:      inbound("player:ready", `{}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:     "kick",
			in:       inbound("player:kick", `{"code":"ABC234","targetPlayerId":"p2"}`),
			wantKind: core.CommandKickPlayer,
		},
		{
			name:    "kick without target",
			in:      inbound("player:kick", `{"code":"ABC234"}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:     "guess",
			in:       inbound("guess:submit", `{"code":"ABC234","value":19.99}`),
			wantKind: core.CommandSubmitGuess,
		},
		{
			name:    "guess zero",
			in:      inbound("guess:submit", `{"code":"ABC234","value":0}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:    "guess negative",
			in:      inbound("guess:submit", `{"code":"ABC234","value":-3}`),
			wantErr: core.ErrCodeBadRequest,
		},
		{
			name:     "settings",
			in:       inbound("lobby:update-settings", `{"code":"ABC234","roundsTotal":8}`),
			wantKind: core.CommandUpdateSettings,
		},
		{
			name:    "unknown type",
			in:      inbound("telemetry:ping", `{}`),
			wantErr: "invalid_message",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(tc.in)
			require.NoError(t, err)
			if tc.wantErr != "" {
				require.NotNil(t, protoErr)
				assert.Equal(t, tc.wantErr, protoErr.Code)
				assert.Nil(t, cmd)
				return
			}
			require.Nil(t, protoErr)
			require.NotNil(t, cmd)
			assert.Equal(t, tc.wantKind, cmd.Kind)
		})
	}
}

func TestInboundToCommandMalformedJSON(t *testing.T) {
	_, _, err := inboundToCommand(inbound("lobby:create", `{"playerName":`))
	assert.Error(t, err)
}

func TestInboundStartWithProducts(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(inbound("game:start-with-products",
		`{"code":"ABC234","products":[{"id":"1","name":"mug","price":7.5,"imageUrl":"u"}]}`))
	require.NoError(t, err)
	require.Nil(t, protoErr)
	require.Len(t, cmd.Products, 1)
	assert.Equal(t, "mug", cmd.Products[0].Name)
	assert.Equal(t, 7.5, cmd.Products[0].Price)
}

func TestOutboundFromEventError(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:  core.EventError,
		Error: &core.CoreError{Code: core.ErrCodeNotHost, Message: "only the host can do that"},
	})
	assert.Equal(t, proto.OutboundTypeError, out.Type)
	require.NotNil(t, out.Error)
	assert.Equal(t, core.ErrCodeNotHost, out.Error.Code)
}

func TestOutboundFromEventCountdowns(t *testing.T) {
	round := outboundFromEvent(&core.Event{Kind: core.EventRoundTick, TimeLeft: 12})
	assert.Equal(t, proto.EventRoundUpdate, round.Event)

	ready := outboundFromEvent(&core.Event{Kind: core.EventReadyTick, TimeLeft: 5})
	assert.Equal(t, proto.EventReadyTimeout, ready.Event)
	assert.Equal(t, proto.CountdownTick{TimeLeft: 5}, ready.Data)
}
