package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/move"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/iamasit07/4-in-a-row/engine/pkg/httputil"
	"github.com/iamasit07/4-in-a-row/engine/pkg/uid"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMessage = 64 << 10
)

type MoveService interface {
	ChooseMove(ctx context.Context, req move.Request) (move.Response, error)
	Profiles() []bot.Profile
}

// Handler serves move requests over a WebSocket.
type Handler struct {
	ConnManager *ConnectionManager
	Moves       MoveService
	Issuer      *auth.TokenIssuer
	Upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHandler builds a handler. allowedOrigins empty accepts any origin.
func NewHandler(cm *ConnectionManager, moves MoveService, issuer *auth.TokenIssuer, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ConnManager: cm,
		Moves:       moves,
		Issuer:      issuer,
		logger:      logger,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the request. A token on the upgrade request
// authenticates the socket immediately; otherwise the first message must be init.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := ""
	if token, err := httputil.GetTokenFromRequest(c.Request); err == nil {
		claims, err := h.Issuer.Validate(token)
		if err != nil {
			conn.WriteJSON(ServerMessage{Type: TypeError, Message: "invalid or expired token"})
			conn.Close()
			return
		}
		clientID = claims.ClientID
	}

	h.handleConnection(conn, clientID)
}

func (h *Handler) handleConnection(conn *websocket.Conn, clientID string) {
	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if clientID == "" {
		id, ok := h.authenticate(conn)
		if !ok {
			conn.Close()
			return
		}
		clientID = id
	}

	connID := uid.GenerateRequestID()
	h.ConnManager.AddConnection(connID, clientID, conn)
	log := h.logger.With(zap.String("conn_id", connID), zap.String("client_id", clientID))
	log.Info("websocket connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.ConnManager.RemoveConnection(connID)
		log.Info("websocket closed")
	}()

	go h.keepAlive(ctx, connID)

	h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeReady})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeError, Message: "invalid message format"})
			continue
		}

		h.processMessage(ctx, connID, msg, log)
	}
}

// authenticate waits for the init message and validates its token.
func (h *Handler) authenticate(conn *websocket.Conn) (string, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		h.logger.Debug("websocket read failed during init", zap.Error(err))
		return "", false
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != TypeInit || msg.JWT == "" {
		conn.WriteJSON(ServerMessage{Type: TypeError, Message: "first message must be init with a token"})
		return "", false
	}

	claims, err := h.Issuer.Validate(msg.JWT)
	if err != nil {
		conn.WriteJSON(ServerMessage{Type: TypeError, Ref: msg.Ref, Message: "invalid or expired token"})
		return "", false
	}
	return claims.ClientID, true
}

func (h *Handler) keepAlive(ctx context.Context, connID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.ConnManager.Ping(connID); err != nil {
				return
			}
		}
	}
}

func (h *Handler) processMessage(ctx context.Context, connID string, msg ClientMessage, log *zap.Logger) {
	switch msg.Type {
	case TypeChooseMove:
		resp, err := h.Moves.ChooseMove(ctx, msg.moveRequest())
		if err != nil {
			log.Debug("move request rejected", zap.Error(err))
			h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeError, Ref: msg.Ref, Message: err.Error()})
			return
		}
		h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeMove, Ref: msg.Ref, Move: &resp})

	case TypeListProfiles:
		h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeProfiles, Ref: msg.Ref, Profiles: h.Moves.Profiles()})

	case TypeInit:
		h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeError, Ref: msg.Ref, Message: "already initialized"})

	default:
		h.ConnManager.SendMessage(connID, ServerMessage{Type: TypeError, Ref: msg.Ref, Message: "unknown message type: " + msg.Type})
	}
}
