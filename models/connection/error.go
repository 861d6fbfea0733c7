package connection

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

const (
	ConnLoopBreak uint8 = iota
	ConnLoopRetry
	ConnLoopContinue
	ConnInvalidMsgType
)

type ConnErr struct {
	code uint8
	desc string
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Error() string {
	return fmt.Sprintf("Connection error - Code: %d\tdesc: %s", c.code, c.desc)
}

func (c ConnErr) Code() uint8 {
	return c.code
}

// ConnErrCode extracts the loop code of err. Errors that are not a
// ConnErr break the loop.
func ConnErrCode(err error) uint8 {
	var connErr ConnErr
	if errors.As(err, &connErr) {
		return connErr.Code()
	}
	return ConnLoopBreak
}

// IsTimeout reports whether err is a read timeout worth retrying.
func IsTimeout(err error) bool {
	return err != nil && ConnErrCode(err) == ConnLoopRetry
}

// Decides what the read/write loop does with a raw connection error.
func onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnLoopRetry
	}

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		return ConnLoopRetry
	}

	// Normal shutdown of the other side, or something we cannot recover from
	// such as a protocol error or a frame that is too big. Either way the
	// game cannot go on over this connection.
	return ConnLoopBreak
}
