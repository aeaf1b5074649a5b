package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social_network_service/internal/chat/domain"
	errprocess "social_network_service/pkg/err"
	"social_network_service/pkg/logger"
	"social_network_service/pkg/middlewares"
)

// ChatWebsocketHandler owns the per-connection protocol loop
type ChatWebsocketHandler struct {
	chatUC *ChatUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(chatUC *ChatUseCase) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		chatUC: chatUC,
	}
}

// wsConn adapts a fiber websocket connection into a domain.ChatConn.
// Fan-out goroutines and the ping loop write concurrently, the
// underlying connection allows only one writer at a time.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) WriteText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// HandleConnection is the entry point of one websocket connection
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, ok := conn.Locals(middlewares.TokenUserID).(int64)
	if !ok {
		logger.Log.Error("websocket connection without identity", zap.String("remote", conn.RemoteAddr().String()))
		_ = conn.Close()
		return
	}
	userName, _ := conn.Locals(middlewares.TokenUserName).(string)
	logger.Log.Info("websocket connected", zap.Int64("userID", userID))

	session := domain.ChatSession{
		UserID:    userID,
		UserName:  userName,
		SessionID: uuid.New().String(),
	}

	handle := &wsConn{conn: conn}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	// the disconnect path runs exactly once, whatever terminated the loop
	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.Int64("userID", userID))
		h.chatUC.Disconnect(userID)
		cancel()
	}()

	// fiber answers close frames itself, the handler only logs
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("Received PONG", zap.String("data", appData))
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	if err := h.chatUC.Connect(ctx, handle, session); err != nil {
		logger.Log.Errorf("websocket connect error:", err, zap.Int64("userID", userID))
		h.sendError(handle, err)
		return
	}

	// keepalive ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, handle, session, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, handle *wsConn, session domain.ChatSession, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, handle, session, msg)
	default:
		// non-text frames are ignored, not errored
		logger.Log.Infof("unsupported frame type:", mt)
	}
}

// textMessageAction decodes one inbound frame. The first frame may be an
// ephemeral session descriptor, which is informational only, every other
// frame is a send-message request. A processing failure answers with an
// error frame on the same connection, the loop keeps running.
func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, handle *wsConn, session domain.ChatSession, msg []byte) {
	var sessionInfo domain.ChatSession
	if err := json.Unmarshal(msg, &sessionInfo); err == nil && sessionInfo.SessionID != "" {
		logger.Log.Debug("received session descriptor", zap.Int64("userID", sessionInfo.UserID))
		return
	}

	var req domain.ChatMessageRequest
	if err := json.Unmarshal(msg, &req); err != nil || req.Content == "" {
		logger.Log.Errorf("message decode error:", err)
		h.sendError(handle, domain.ErrInternal)
		return
	}

	if _, err := h.chatUC.SendMessage(ctx, session, req); err != nil {
		logger.Log.Error("websocket send failed",
			zap.Int64("userID", session.UserID),
			zap.String("err", err.Error()),
		)
		h.sendError(handle, err)
	}
}

func (h *ChatWebsocketHandler) sendError(handle *wsConn, err error) {
	resp := domain.NewErrorResponse(errprocess.CodeOf(err), err.Error())
	b, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return
	}
	if writeErr := handle.WriteText(b); writeErr != nil {
		logger.Log.Errorf("write error frame failed:", writeErr)
	}
}
