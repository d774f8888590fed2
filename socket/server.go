package socket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"devmatch/helpers"
	"devmatch/middleware"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

const (
	rootNamespace = "/"
	storeTimeout  = 5 * time.Second
)

// MessageStore persists chat messages between connected users.
type MessageStore interface {
	CanChat(ctx context.Context, a, b string) error
	SaveMessage(ctx context.Context, fromUserID, toUserID, body string) (*models.Message, error)
}

// session is the per-connection state. Handlers for one connection run
// sequentially, so it needs no locking.
type session struct {
	UserID string
	Room   string
}

// Server is the push channel: one room per conversation, joined by the
// two participants' connections.
type Server struct {
	io    *socketio.Server
	auth  middleware.Authenticator
	store MessageStore
	log   logger.Logger
}

// NewSocketServer initializes a Socket.IO server. With redis options set,
// rooms are shared across instances through the Redis adapter.
func NewSocketServer(auth middleware.Authenticator, store MessageStore, log logger.Logger, redis *socketio.RedisAdapterOptions) (*Server, error) {
	allowOrigin := func(*http.Request) bool { return true }
	io := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{Client: &http.Client{Timeout: time.Minute}, CheckOrigin: allowOrigin},
			&websocket.Transport{CheckOrigin: allowOrigin},
		},
		ConnInitor: func(r *http.Request, conn engineio.Conn) {
			conn.SetContext(&session{UserID: middleware.UserID(r.Context())})
		},
	})

	// The adapter must be set before any namespace is created.
	if redis != nil {
		if _, err := io.Adapter(redis); err != nil {
			return nil, err
		}
		log.Info("🔗 Socket.IO Redis adapter enabled", "addr", redis.Addr)
	}

	s := &Server{io: io, auth: auth, store: store, log: log}
	io.OnConnect(rootNamespace, s.onConnect)
	io.OnEvent(rootNamespace, models.EventJoinRoom, s.onJoinRoom)
	io.OnEvent(rootNamespace, models.EventLeaveRoom, s.onLeaveRoom)
	io.OnEvent(rootNamespace, models.EventSendMessage, s.onSendMessage)
	io.OnError(rootNamespace, s.onError)
	io.OnDisconnect(rootNamespace, s.onDisconnect)
	return s, nil
}

// Serve accepts connections until Close.
func (s *Server) Serve() error {
	return s.io.Serve()
}

func (s *Server) Close() error {
	return s.io.Close()
}

// ServeHTTP authenticates the handshake with the "token" query parameter
// (or a bearer header) before handing it to Socket.IO.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		helpers.WriteError(w, apperrors.ErrMissingToken)
		return
	}
	userID, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	s.io.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), userID)))
}

func sessionOf(c socketio.Conn) *session {
	sess, _ := c.Context().(*session)
	return sess
}

func (s *Server) onConnect(c socketio.Conn) error {
	sess := sessionOf(c)
	if sess == nil || sess.UserID == "" {
		return errors.New("unauthenticated socket")
	}
	s.log.Info("✅ Socket connected", "socketId", c.ID(), "userId", sess.UserID)
	return nil
}

func (s *Server) onJoinRoom(c socketio.Conn, payload models.RoomPayload) {
	sess := sessionOf(c)
	if sess == nil {
		return
	}
	if payload.CurrentUserID != "" && payload.CurrentUserID != sess.UserID {
		s.log.Warn("⚠️ join-room with foreign currentUserId", "userId", sess.UserID, "claimed", payload.CurrentUserID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.CanChat(ctx, sess.UserID, payload.ToUserID); err != nil {
		s.log.Warn("❌ join-room refused", "userId", sess.UserID, "to", payload.ToUserID, "err", err)
		c.Emit(models.EventSendError, models.SendError{Message: publicMessage(err), ToUserID: payload.ToUserID})
		return
	}

	room := models.ConversationID(sess.UserID, payload.ToUserID)
	if sess.Room != "" && sess.Room != room {
		c.Leave(sess.Room)
	}
	c.Join(room)
	sess.Room = room
	s.log.Info("👥 Joined room", "userId", sess.UserID, "room", room)
}

func (s *Server) onLeaveRoom(c socketio.Conn, payload models.RoomPayload) {
	sess := sessionOf(c)
	if sess == nil {
		return
	}
	room := models.ConversationID(sess.UserID, payload.ToUserID)
	if sess.Room == room {
		c.Leave(room)
		sess.Room = ""
		s.log.Info("👋 Left room", "userId", sess.UserID, "room", room)
	}
}

func (s *Server) onSendMessage(c socketio.Conn, payload models.PushMessage) {
	sess := sessionOf(c)
	if sess == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	msg, err := s.store.SaveMessage(ctx, sess.UserID, payload.ToUserID, payload.Message)
	if err != nil {
		s.log.Warn("❌ send-message refused", "userId", sess.UserID, "to", payload.ToUserID, "err", err)
		c.Emit(models.EventSendError, models.SendError{Message: publicMessage(err), ToUserID: payload.ToUserID})
		return
	}

	room := models.ConversationID(sess.UserID, payload.ToUserID)
	s.io.BroadcastToRoom(rootNamespace, room, models.EventSendMessage, models.PushMessageFrom(*msg))
	s.log.Debug("📩 Message broadcast", "room", room, "messageId", msg.ID)
}

func (s *Server) onError(c socketio.Conn, err error) {
	if c == nil {
		s.log.Warn("❌ Socket handshake error", "err", err)
		return
	}
	s.log.Warn("❌ Socket error", "socketId", c.ID(), "err", err)
}

func (s *Server) onDisconnect(c socketio.Conn, reason string) {
	s.log.Info("❌ Socket disconnected", "socketId", c.ID(), "reason", reason)
}

func publicMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "message could not be delivered"
}
