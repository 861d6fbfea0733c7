package connection

import (
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type wsFrame struct {
	messageType int
	payload     []byte
	err         error
}

// WsSession is a Transport over a websocket connection, one text frame
// per line.
//
// A gorilla connection is unusable after a read deadline fires, so
// frames are read by a single goroutine and ReadLine waits on them with
// its own timer instead.
type WsSession struct {
	id          string
	conn        *websocket.Conn
	readTimeout time.Duration
	createdAt   time.Time
	logger      *zap.Logger

	frames  chan wsFrame
	done    chan struct{}
	once    sync.Once
	readErr error
}

var _ Transport = (*WsSession)(nil)

func NewWsSession(conn *websocket.Conn, readTimeout time.Duration, logger *zap.Logger) *WsSession {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &WsSession{
		id:          newSessionId(),
		conn:        conn,
		readTimeout: readTimeout,
		createdAt:   time.Now(),
		logger:      logger,
		frames:      make(chan wsFrame),
		done:        make(chan struct{}),
	}
	go s.readFrames()
	return s
}

func (s *WsSession) Id() string {
	return s.id
}

func (s *WsSession) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *WsSession) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *WsSession) readFrames() {
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		messageType, payload, err := s.conn.ReadMessage()

		select {
		case s.frames <- wsFrame{messageType: messageType, payload: payload, err: err}:
		case <-s.done:
			return
		}

		if err != nil {
			return
		}
	}
}

func (s *WsSession) ReadLine() (string, error) {
	if s.readErr != nil {
		return "", NewConnErr(ConnLoopBreak).AddDesc(s.readErr.Error())
	}

	var timeout <-chan time.Time
	if s.readTimeout > 0 {
		timer := time.NewTimer(s.readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case frame := <-s.frames:
			if frame.err != nil {
				s.readErr = frame.err
				if websocket.IsUnexpectedCloseError(frame.err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warn("unexpected websocket close", zap.String("session_id", s.id), zap.Error(frame.err))
				}
				return "", NewConnErr(onConnErr(frame.err)).AddDesc(frame.err.Error())
			}

			// Only text frames carry protocol lines
			if frame.messageType != websocket.TextMessage {
				s.logger.Warn("ignoring non-text frame", zap.Int("message_type", frame.messageType))
				continue
			}
			return strings.TrimRight(string(frame.payload), "\r\n"), nil

		case <-timeout:
			return "", NewConnErr(ConnLoopRetry).AddDesc("websocket read timeout")
		}
	}
}

func (s *WsSession) SendLine(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return NewConnErr(ConnLoopBreak).AddDesc(err.Error())
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return NewConnErr(onConnErr(err)).AddDesc("writing to websocket failed: " + err.Error())
	}
	return nil
}

// Close sends a normal closure frame before closing the connection.
func (s *WsSession) Close() error {
	s.once.Do(func() { close(s.done) })

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
