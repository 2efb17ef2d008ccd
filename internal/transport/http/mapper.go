package http

import (
	"encoding/json"
	"math"

	"github.com/priceparty/priceparty-server/internal/core"
	"github.com/priceparty/priceparty-server/internal/game"
	"github.com/priceparty/priceparty-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeCreate:
		var create proto.CreateData
		if err := json.Unmarshal(inbound.Data, &create); err != nil {
			return nil, nil, err
		}
		if create.PlayerName == "" {
			return nil, badRequest("playerName is required"), nil
		}
		cmd := &core.Command{
			Kind:     core.CommandCreateLobby,
			Name:     create.PlayerName,
			ClientID: create.ClientID,
		}
		if create.Rounds > 0 {
			rounds := create.Rounds
			cmd.Rounds = &rounds
		}
		if create.ProductSource != "" {
			source := create.ProductSource
			cmd.ProductSource = &source
		}
		return cmd, nil, nil

	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Code == "" {
			return nil, badRequest("code is required"), nil
		}
		if join.PlayerName == "" {
			return nil, badRequest("playerName is required"), nil
		}
		return &core.Command{
			Kind:     core.CommandJoinLobby,
			Code:     join.Code,
			Name:     join.PlayerName,
			ClientID: join.ClientID,
		}, nil, nil

	case proto.InboundTypeLeave, proto.InboundTypeStartGame, proto.InboundTypeReady, proto.InboundTypeReset:
		var data proto.CodeData
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &data); err != nil {
				return nil, nil, err
			}
		}
		kind := map[string]core.CommandKind{
			proto.InboundTypeLeave:     core.CommandLeaveLobby,
			proto.InboundTypeStartGame: core.CommandStartGame,
			proto.InboundTypeReady:     core.CommandPlayerReady,
			proto.InboundTypeReset:     core.CommandResetGame,
		}[inbound.Type]
		if data.Code == "" && inbound.Type != proto.InboundTypeLeave {
			return nil, badRequest("code is required"), nil
		}
		return &core.Command{Kind: kind, Code: data.Code}, nil, nil

	case proto.InboundTypeUpdateSettings:
		var settings proto.SettingsData
		if err := json.Unmarshal(inbound.Data, &settings); err != nil {
			return nil, nil, err
		}
		if settings.Code == "" {
			return nil, badRequest("code is required"), nil
		}
		return &core.Command{
			Kind:          core.CommandUpdateSettings,
			Code:          settings.Code,
			Rounds:        settings.Rounds,
			ProductSource: settings.ProductSource,
		}, nil, nil

	case proto.InboundTypeKick:
		var kick proto.KickData
		if err := json.Unmarshal(inbound.Data, &kick); err != nil {
			return nil, nil, err
		}
		if kick.Code == "" || kick.TargetID == "" {
			return nil, badRequest("code and targetPlayerId are required"), nil
		}
		return &core.Command{
			Kind:     core.CommandKickPlayer,
			Code:     kick.Code,
			TargetID: kick.TargetID,
		}, nil, nil

	case proto.InboundTypeStartWithProducts:
		var start proto.StartWithProductsData
		if err := json.Unmarshal(inbound.Data, &start); err != nil {
			return nil, nil, err
		}
		if start.Code == "" {
			return nil, badRequest("code is required"), nil
		}
		products := make([]game.Product, 0, len(start.Products))
		for _, p := range start.Products {
			products = append(products, game.Product{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				ImageURL: p.ImageURL,
				Provider: p.Provider,
			})
		}
		return &core.Command{
			Kind:     core.CommandStartWithProducts,
			Code:     start.Code,
			Products: products,
		}, nil, nil

	case proto.InboundTypeGuess:
		var guess proto.GuessData
		if err := json.Unmarshal(inbound.Data, &guess); err != nil {
			return nil, nil, err
		}
		if guess.Code == "" {
			return nil, badRequest("code is required"), nil
		}
		if guess.Value <= 0 || math.IsInf(guess.Value, 0) || math.IsNaN(guess.Value) {
			return nil, badRequest("value must be a positive number"), nil
		}
		return &core.Command{
			Kind:  core.CommandSubmitGuess,
			Code:  guess.Code,
			Guess: guess.Value,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

// outboundFromEvent converts a core event into its wire shape. The game
// snapshot and result types carry JSON tags and are embedded directly.
func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventLobbyState:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLobbyState,
			Data:  event.Lobby,
		}
	case core.EventGameLoading:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventGameLoading,
			Data: proto.GameLoading{
				Message:     event.Message,
				TotalRounds: event.TotalRounds,
			},
		}
	case core.EventGameStarted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventGameStarted,
			Data: proto.GameStarted{
				Product:     productData(event.Product),
				RoundIndex:  event.Round,
				TotalRounds: event.TotalRounds,
			},
		}
	case core.EventRoundTick:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoundUpdate,
			Data:  proto.CountdownTick{TimeLeft: event.TimeLeft},
		}
	case core.EventReadyTick:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReadyTimeout,
			Data:  proto.CountdownTick{TimeLeft: event.TimeLeft},
		}
	case core.EventRoundResults:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoundResults,
			Data:  event.Results,
		}
	case core.EventGameEnded:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventGameEnded,
			Data: map[string]any{
				"finalLeaderboard": event.Leaderboard,
			},
		}
	case core.EventPlayerKicked:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPlayerKicked,
			Data:  proto.CodeData{Code: event.Code},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.ErrCodeInternal, Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func productData(p *game.Product) *proto.ProductData {
	if p == nil {
		return nil
	}
	return &proto.ProductData{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Provider: p.Provider,
	}
}
