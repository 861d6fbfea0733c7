package connection

import (
	"strings"

	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

const (
	TokenStart    = "start"
	TokenMiss     = "pudło"
	TokenHit      = "trafiony"
	TokenSunk     = "trafiony zatopiony"
	TokenLastSunk = "ostatni zatopiony"
)

const (
	// Result token that matched nothing known
	CodeUnknown uint8 = iota
	CodeStart
	CodeMiss
	CodeHit
	CodeSunk
	CodeLastSunk
)

// Checked in order, first substring match wins. "zatopiony" shows up
// in two tokens and "trafiony" in two, so the longer ones go first.
var signalPriority = []struct {
	token string
	code  uint8
}{
	{TokenLastSunk, CodeLastSunk},
	{TokenStart, CodeStart},
	{TokenSunk, CodeSunk},
	{TokenHit, CodeHit},
	{TokenMiss, CodeMiss},
}

// Signal is the first token of a protocol line: the verdict on the
// receiver's previous shot, or "start".
type Signal struct {
	Code uint8

	// Token as it was received or will be sent
	Token string
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code, Token: tokenForCode(code)}
}

// ClassifySignal matches the token case-insensitively by substring so
// decorated results such as "TRAFIONY!" are still understood.
func ClassifySignal(token string) Signal {
	lower := strings.ToLower(token)
	for _, p := range signalPriority {
		if strings.Contains(lower, p.token) {
			return Signal{Code: p.code, Token: token}
		}
	}
	return Signal{Code: CodeUnknown, Token: token}
}

func SignalFromShotResult(result mb.ShotResult) Signal {
	switch result {
	case mb.ShotResultMiss:
		return NewSignal(CodeMiss)
	case mb.ShotResultHit:
		return NewSignal(CodeHit)
	case mb.ShotResultSunk:
		return NewSignal(CodeSunk)
	case mb.ShotResultLastSunk:
		return NewSignal(CodeLastSunk)
	default:
		return NewSignal(CodeUnknown)
	}
}

func (s Signal) IsStart() bool {
	return s.Code == CodeStart
}

func (s Signal) ShotResult() mb.ShotResult {
	switch s.Code {
	case CodeMiss:
		return mb.ShotResultMiss
	case CodeHit:
		return mb.ShotResultHit
	case CodeSunk:
		return mb.ShotResultSunk
	case CodeLastSunk:
		return mb.ShotResultLastSunk
	default:
		return mb.ShotResultUnknown
	}
}

func tokenForCode(code uint8) string {
	switch code {
	case CodeStart:
		return TokenStart
	case CodeMiss:
		return TokenMiss
	case CodeHit:
		return TokenHit
	case CodeSunk:
		return TokenSunk
	case CodeLastSunk:
		return TokenLastSunk
	default:
		return ""
	}
}
