package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/triquilabs/triqui-backend/internal/apperror"
	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/pkg"
)

func (that *Server) handleCreateRoom(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom")

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	identity, err := pkg.NormalizeIdentity(payload.Player)
	if err != nil {
		that.reject(client, msg.Action, err.Error())
		return nil
	}

	that.hub.Bind(identity, client)

	room, err := that.coordinator.CreateRoom(ctx, identity)
	if err != nil {
		that.reject(client, msg.Action, reasonFor(err))
		return fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("room created", "roomID", room.ID, "identity", identity)

	return that.ack(client, msg.Action, AckPayload{OK: true, RoomID: room.ID, Symbol: entity.PlayerX})
}

func (that *Server) handleJoinRoom(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom")

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	identity, err := pkg.NormalizeIdentity(payload.Player)
	if err != nil {
		that.reject(client, msg.Action, err.Error())
		return nil
	}

	that.hub.Bind(identity, client)

	room, err := that.coordinator.JoinRoom(ctx, payload.RoomID, identity)
	if err != nil {
		that.reject(client, msg.Action, reasonFor(err))
		return nil
	}

	log.Info("player joined room", "roomID", room.ID, "identity", identity)

	return that.ack(client, msg.Action, AckPayload{OK: true, RoomID: room.ID, Symbol: entity.PlayerO})
}

func (that *Server) handleStartGame(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleStartGame")

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	room, err := that.coordinator.StartGame(ctx, payload.RoomID)
	if err != nil {
		that.reject(client, msg.Action, reasonFor(err))
		return nil
	}

	log.Info("game started", "roomID", room.ID, "gameID", room.Game.ID)

	return that.ack(client, msg.Action, AckPayload{OK: true})
}

func (that *Server) handleGameTurn(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	identity, err := pkg.NormalizeIdentity(payload.Player)
	if err != nil {
		that.reject(client, msg.Action, err.Error())
		return nil
	}

	if payload.Cell == nil {
		that.reject(client, msg.Action, "cell is required")
		return nil
	}

	that.hub.Bind(identity, client)

	room, err := that.coordinator.MakeMove(ctx, payload.GameID, identity, *payload.Cell)
	if err != nil {
		that.reject(client, msg.Action, reasonFor(err))
		return nil
	}

	log.Info("move accepted", "gameID", room.Game.ID, "identity", identity, "cell", *payload.Cell)

	return that.ack(client, msg.Action, AckPayload{OK: true})
}

func (that *Server) handleDeleteRoom(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleDeleteRoom")

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	identity, err := pkg.NormalizeIdentity(payload.Player)
	if err != nil {
		that.reject(client, msg.Action, err.Error())
		return nil
	}

	that.hub.Bind(identity, client)

	if err = that.coordinator.DeleteRoom(ctx, payload.RoomID, identity); err != nil {
		that.reject(client, msg.Action, reasonFor(err))
		return nil
	}

	log.Info("room deleted", "roomID", payload.RoomID, "identity", identity)

	return that.ack(client, msg.Action, AckPayload{OK: true})
}

func (that *Server) ack(client *Client, action string, payload AckPayload) error {
	if err := client.send(action, payload); err != nil {
		return fmt.Errorf("failed to send ack: %w", err)
	}

	return nil
}

func (that *Server) reject(client *Client, action, reason string) {
	if err := client.send(action, AckPayload{OK: false, Reason: reason}); err != nil {
		that.logger.Error("failed to send rejection", "action", action, "error", err)
	}
}

// knownRejections are surfaced to the caller verbatim; anything else is an
// internal failure the client has no business seeing.
var knownRejections = []error{
	apperror.ErrRoomNotFound,
	apperror.ErrGameNotFound,
	apperror.ErrRoomFull,
	apperror.ErrAlreadyJoined,
	apperror.ErrNotEnoughPlayers,
	apperror.ErrNotOwner,
	apperror.ErrGameFinished,
	apperror.ErrGameIsNotStarted,
	apperror.ErrNotYourTurn,
	apperror.ErrNotInRoom,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
	apperror.ErrEmptyIdentity,
}

func reasonFor(err error) string {
	for _, known := range knownRejections {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
