package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"cogsguard-agent/pkg/api"
	"cogsguard-agent/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// ErrClosed - соединение уже закрыто.
var ErrClosed = errors.New("connection closed")

// Handler обрабатывает кадры среды. engine.Service реализует этот интерфейс.
type Handler interface {
	Hello() api.HelloMsg
	Handle(raw []byte) (interface{}, error)
}

// Client - посредник между Websocket среды и Handler.
// Писать в соединение может только writePump.
type Client struct {
	conn *websocket.Conn
	send chan interface{}
	done chan struct{}
	once sync.Once
	log  *logrus.Entry
}

// Dial подключается к среде.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(conn), nil
}

// NewClient оборачивает уже открытое соединение.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan interface{}, sendBuffer),
		done: make(chan struct{}),
		log:  logger.Log.WithField("component", "network"),
	}
}

// Send ставит сообщение в очередь на отправку.
func (c *Client) Send(msg interface{}) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Close закрывает соединение. Повторный вызов ничего не делает.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Run отправляет HELLO и обрабатывает кадры, пока соединение живо.
// Ошибка обработки одного кадра не рвет сессию: кадр пропускается.
func (c *Client) Run(ctx context.Context, h Handler) error {
	go c.writePump()
	defer c.Close()

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	if err := c.Send(h.Hello()); err != nil {
		return fmt.Errorf("send HELLO: %w", err)
	}
	c.log.Info("Connected, HELLO sent")

	err := c.readPump(h)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readPump читает кадры среды
func (c *Client) readPump(h Handler) error {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info("Environment closed the connection")
				return nil
			}
			select {
			case <-c.done:
				return nil
			default:
			}
			return fmt.Errorf("read: %w", err)
		}
		// Любой кадр продлевает жизнь соединения
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to extend read deadline")
		}

		reply, err := h.Handle(raw)
		if err != nil {
			c.log.WithError(err).Warn("Frame rejected")
			continue
		}
		if reply == nil {
			continue
		}
		if err := c.Send(reply); err != nil {
			return err
		}
	}
}

// writePump отправляет сообщения среде + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				c.Close()
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				c.Close()
				return
			}

		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Debug("write close message failed")
			}
			return
		}
	}
}
