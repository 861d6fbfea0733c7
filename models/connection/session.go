package connection

import (
	"bufio"
	"encoding/base64"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxWriteRetries uint8         = 2
	backOffFactor   uint8         = 2
	writeTimeout    time.Duration = time.Second * 10

	// Read timeout used when none is configured
	DefaultReadTimeout time.Duration = time.Minute * 2
)

// Transport carries protocol lines between the two players.
// ReadLine returns a ConnErr: ConnLoopRetry on a read timeout and
// ConnLoopBreak once the peer is gone.
type Transport interface {
	SendLine(line string) error
	ReadLine() (string, error)
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Close() error
}

// Session is a Transport over a stream connection, one line per message.
type Session struct {
	id          string
	conn        net.Conn
	reader      *bufio.Reader
	readTimeout time.Duration
	createdAt   time.Time
	logger      *zap.Logger

	// Bytes of a line that was cut by a read timeout
	partial strings.Builder
}

var _ Transport = (*Session)(nil)

func NewSession(conn net.Conn, readTimeout time.Duration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		id:          newSessionId(),
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: readTimeout,
		createdAt:   time.Now(),
		logger:      logger,
	}
}

func newSessionId() string {
	return base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Writes the line to the connection. Write timeouts are retried with
// a growing back off, anything else ends the session.
func (s *Session) SendLine(line string) error {
	var retries uint8

	for {
		if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return NewConnErr(ConnLoopBreak).AddDesc(err.Error())
		}

		_, err := s.conn.Write([]byte(line + "\n"))
		if err == nil {
			return nil
		}

		switch onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteRetries {
				retries++
				s.logger.Warn("writing line failed; retrying...",
					zap.String("remote_addr", s.conn.RemoteAddr().String()),
					zap.Uint8("retry", retries),
				)
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue
			}
			return NewConnErr(ConnLoopBreak).AddDesc("max retries reached for writing: " + err.Error())

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
		}
	}
}

// ReadLine blocks until a full line arrives or the read timeout hits.
// A line cut by the timeout is completed by the next call. The trailing
// newline is stripped.
func (s *Session) ReadLine() (string, error) {
	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return "", NewConnErr(ConnLoopBreak).AddDesc(err.Error())
		}
	}

	chunk, err := s.reader.ReadString('\n')
	s.partial.WriteString(chunk)
	if err == nil {
		return s.takeLine(), nil
	}

	switch onConnErr(err) {
	case ConnLoopRetry:
		return "", NewConnErr(ConnLoopRetry).AddDesc(err.Error())

	default:
		// Last line of the stream without a newline
		if s.partial.Len() > 0 {
			return s.takeLine(), nil
		}
		s.logger.Debug("read loop ended", zap.String("session_id", s.id), zap.Error(err))
		return "", NewConnErr(ConnLoopBreak).AddDesc(err.Error())
	}
}

func (s *Session) takeLine() string {
	line := strings.TrimRight(s.partial.String(), "\r\n")
	s.partial.Reset()
	return line
}
