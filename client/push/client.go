package push

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/googollee/go-socket.io/parser"
	pkgerrors "github.com/pkg/errors"
)

// ErrClosed is returned by emits after Close or a dropped connection.
var ErrClosed = apperrors.TransportFailure("push channel closed", nil)

var (
	pushMessageType = []reflect.Type{reflect.TypeOf(models.PushMessage{})}
	sendErrorType   = []reflect.Type{reflect.TypeOf(models.SendError{})}
)

// Client is a Socket.IO client over the engine.io websocket transport.
type Client struct {
	log logger.Logger

	conn engineio.Conn

	mu      sync.Mutex
	enc     *parser.Encoder
	scope   *Scope
	subs    map[int]func(Event)
	nextSub int
	closed  bool

	done chan struct{}
}

var _ Channel = (*Client)(nil)

// Dial connects to the server at baseURL and authenticates with token. A
// rejected token is reported as Unauthorized.
func Dial(ctx context.Context, baseURL, token string, log logger.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.TransportFailure("dial push channel", err)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/socket.io/")
	if err != nil {
		return nil, apperrors.TransportFailure("invalid push url", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	dialer := engineio.Dialer{
		Transports: []transport.Transport{&websocket.Transport{HandshakeTimeout: timeout}},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, err := dialer.Dial(u.String(), header)
	if err != nil {
		var dialErr websocket.DialError
		if errors.As(err, &dialErr) && dialErr.Response != nil && dialErr.Response.StatusCode == http.StatusUnauthorized {
			return nil, apperrors.Wrap(apperrors.CodeUnauthenticated, "push channel rejected session", err)
		}
		return nil, apperrors.TransportFailure("dial push channel", pkgerrors.Wrap(err, u.Host))
	}

	c := &Client{
		log:  log,
		conn: conn,
		enc:  parser.NewEncoder(conn),
		subs: map[int]func(Event){},
		done: make(chan struct{}),
	}
	go c.readLoop(parser.NewDecoder(conn))
	log.Info("🔌 Push channel connected", "host", u.Host)
	return c, nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Scope returns the currently joined scope.
func (c *Client) Scope() (Scope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope == nil {
		return Scope{}, false
	}
	return *c.scope, true
}

// Join subscribes to scope, leaving any other joined scope first.
func (c *Client) Join(scope Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scope != nil && *c.scope != scope {
		if err := c.emitLocked(models.EventLeaveRoom, roomPayload(*c.scope)); err != nil {
			return err
		}
		c.scope = nil
	}
	if err := c.emitLocked(models.EventJoinRoom, roomPayload(scope)); err != nil {
		return err
	}
	c.scope = &scope
	return nil
}

// Leave unsubscribes from scope if it is the joined one.
func (c *Client) Leave(scope Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scope == nil || *c.scope != scope {
		return nil
	}
	c.scope = nil
	return c.emitLocked(models.EventLeaveRoom, roomPayload(scope))
}

// Send emits a chat message.
func (c *Client) Send(msg models.PushMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emitLocked(models.EventSendMessage, msg)
}

func (c *Client) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Close disconnects. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.scope = nil
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) emitLocked(event string, payload interface{}) error {
	if c.closed {
		return ErrClosed
	}
	header := parser.Header{Type: parser.Event}
	if err := c.enc.Encode(header, []interface{}{event, payload}); err != nil {
		return apperrors.TransportFailure("emit "+event, err)
	}
	return nil
}

func (c *Client) readLoop(dec *parser.Decoder) {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.scope = nil
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var header parser.Header
		var event string
		if err := dec.DecodeHeader(&header, &event); err != nil {
			c.log.Info("🔌 Push channel closed", "err", err)
			return
		}
		if header.Type != parser.Event {
			_ = dec.DiscardLast()
			continue
		}

		switch event {
		case models.EventSendMessage:
			args, err := dec.DecodeArgs(pushMessageType)
			if err != nil {
				c.log.Warn("⚠️ Undecodable push message", "err", pkgerrors.Wrap(err, event))
				continue
			}
			msg := args[0].Interface().(models.PushMessage)
			c.dispatch(Event{Message: &msg})
		case models.EventSendError:
			args, err := dec.DecodeArgs(sendErrorType)
			if err != nil {
				c.log.Warn("⚠️ Undecodable push error", "err", pkgerrors.Wrap(err, event))
				continue
			}
			sendErr := args[0].Interface().(models.SendError)
			c.dispatch(Event{SendError: &sendErr})
		default:
			_ = dec.DiscardLast()
		}
	}
}

func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func roomPayload(s Scope) models.RoomPayload {
	return models.RoomPayload{CurrentUserID: s.SelfID, ToUserID: s.TargetID}
}
