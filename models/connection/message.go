package connection

import (
	"strings"

	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

const tokenSeparator = ";"

// Message is one protocol line: "<result>[;<target>]".
type Message struct {
	Signal Signal
	Target *mb.Coordinates

	// Second token as received. Set even when it could not be parsed.
	RawTarget string
}

func NewMessage(signal Signal) Message {
	return Message{Signal: signal}
}

func (m *Message) AddTarget(target mb.Coordinates) {
	m.Target = &target
	m.RawTarget = target.String()
}

func (m Message) HasTarget() bool {
	return m.Target != nil
}

// Encode renders the message as a line without the trailing newline.
func (m Message) Encode() string {
	if m.Target == nil {
		return m.Signal.Token
	}
	return m.Signal.Token + tokenSeparator + m.Target.String()
}

// ParseMessage never fails on the result token; an unknown one is kept
// verbatim. The returned error only reports a target token that is
// present but not a valid coordinate, in which case Target is nil.
func ParseMessage(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, tokenSeparator)

	msg := NewMessage(ClassifySignal(strings.TrimSpace(parts[0])))
	if len(parts) < 2 {
		return msg, nil
	}

	msg.RawTarget = strings.TrimSpace(parts[1])
	if msg.RawTarget == "" {
		return msg, nil
	}

	target, err := mb.ParseCoordinates(msg.RawTarget)
	if err != nil {
		return msg, err
	}
	msg.Target = &target
	return msg, nil
}
