// internal/handlers/player.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/middleware"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

const playerWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PlayerCommand drives the player over REST or the WebSocket channel.
type PlayerCommand struct {
	Action string   `json:"action"`
	BeatID string   `json:"beatId,omitempty"`
	Value  *float64 `json:"value,omitempty"`
}

// PlayerMessage is written back on the WebSocket after every command.
type PlayerMessage struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	State   services.PlaybackState `json:"state"`
}

type PlayerHandler struct {
	market *services.Marketplace
	log    logrus.FieldLogger
}

func NewPlayerHandler(market *services.Marketplace, log logrus.FieldLogger) *PlayerHandler {
	return &PlayerHandler{
		market: market,
		log:    log.WithField("component", "player_ws"),
	}
}

// GET /player
func (h *PlayerHandler) GetState(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"state": h.market.Playback.State(),
	})
}

// POST /player/:action
func (h *PlayerHandler) Command(c *gin.Context) {
	var cmd PlayerCommand
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&cmd); err != nil {
			lang := utils.GetLangFromContext(c)
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}
	cmd.Action = c.Param("action")

	state, err := h.dispatch(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err, "beat")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"state": state,
	})
}

// DELETE /player/queue
func (h *PlayerHandler) ClearQueue(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"state": h.market.Playback.ClearQueue(),
	})
}

// GET /player/ws?token=
//
// Runs outside the exclusive middleware: the connection is long lived, so
// the marketplace is locked per message instead of per request.
func (h *PlayerHandler) Connect(c *gin.Context) {
	h.market.Lock()
	user, failure := middleware.Authenticate(c, h.market)
	h.market.Unlock()
	if user == nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), failure))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"remote_addr": conn.RemoteAddr().String(),
	})
	log.Info("Player connected")

	if !h.write(conn, h.snapshot(), log) {
		return
	}

	for {
		var cmd PlayerCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WebSocket read error")
			}
			break
		}

		msg := h.handleMessage(c.Request.Context(), user.ID, cmd)
		if !h.write(conn, msg, log) {
			break
		}
	}

	log.Info("Player disconnected")
}

func (h *PlayerHandler) handleMessage(ctx context.Context, userID string, cmd PlayerCommand) PlayerMessage {
	h.market.Lock()
	defer h.market.Unlock()

	// The session may have changed since the channel was opened.
	if current := h.market.Identity.CurrentUser(); current == nil || current.ID != userID {
		return PlayerMessage{Error: services.ErrNoSession.Error(), State: h.market.Playback.State()}
	}

	state, err := h.dispatch(ctx, cmd)
	if err != nil {
		return PlayerMessage{Error: err.Error(), State: state}
	}
	return PlayerMessage{Success: true, State: state}
}

func (h *PlayerHandler) snapshot() PlayerMessage {
	h.market.Lock()
	defer h.market.Unlock()
	return PlayerMessage{Success: true, State: h.market.Playback.State()}
}

func (h *PlayerHandler) write(conn *websocket.Conn, msg PlayerMessage, log logrus.FieldLogger) bool {
	conn.SetWriteDeadline(time.Now().Add(playerWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.WithError(err).Warn("WebSocket write error")
		return false
	}
	return true
}

// dispatch applies cmd to the player. The caller holds the marketplace lock.
func (h *PlayerHandler) dispatch(ctx context.Context, cmd PlayerCommand) (services.PlaybackState, error) {
	player := h.market.Playback

	value := func() (float64, error) {
		if cmd.Value == nil {
			return 0, fmt.Errorf("%w: %s requires a value", services.ErrValidation, cmd.Action)
		}
		return *cmd.Value, nil
	}

	switch cmd.Action {
	case "state":
		return player.State(), nil
	case "play":
		return player.Play(ctx, cmd.BeatID)
	case "pause":
		return player.Pause(), nil
	case "toggle":
		return player.Toggle(), nil
	case "seek":
		v, err := value()
		if err != nil {
			return player.State(), err
		}
		return player.Seek(v), nil
	case "volume":
		v, err := value()
		if err != nil {
			return player.State(), err
		}
		return player.SetVolume(v), nil
	case "duration":
		v, err := value()
		if err != nil {
			return player.State(), err
		}
		return player.SetDuration(v), nil
	case "position":
		v, err := value()
		if err != nil {
			return player.State(), err
		}
		return player.UpdatePosition(ctx, v), nil
	case "ended":
		return player.Ended(ctx), nil
	case "next":
		return player.Next(ctx), nil
	case "previous":
		return player.Previous(), nil
	case "queue":
		return player.AddToQueue(cmd.BeatID)
	case "clear_queue":
		return player.ClearQueue(), nil
	case "stop":
		return player.Stop(), nil
	default:
		return player.State(), fmt.Errorf("%w: unknown action %q", services.ErrValidation, cmd.Action)
	}
}
