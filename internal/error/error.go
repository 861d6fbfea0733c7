package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrMapLoadFailed = "loading map failed; generating a random one"
)

var (
	// Returned by the fleet generator after every attempt failed.
	ErrFleetGenerationFailed = errors.New("fleet generation failed: all attempts exhausted")

	// Three consecutive read timeouts. The session ends without a verdict.
	ErrCommunicationTimeout = errors.New("communication failed: read timeout limit exceeded")

	// The peer closed the connection before the game was decided.
	ErrTransportClosed = errors.New("connection closed by peer before the game ended")
)

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrInvalidCoordinateToken(token string) error {
	return fmt.Errorf("invalid coordinate token, expected [A-J][1-10]:\t%q", token)
}

func ErrInvalidGridEncoding(length int) error {
	return fmt.Errorf("grid encoding must be at least 100 characters of '#' or '.', got length: %d", length)
}

func ErrInvalidGridCharacter(ch rune, idx int) error {
	return fmt.Errorf("grid encoding contains invalid character %q at index %d", ch, idx)
}

func ErrInvalidShipCellCount(count int) error {
	return fmt.Errorf("fleet must have exactly 20 ship cells, got: %d", count)
}

func ErrInvalidFleetComposition(sizes []int) error {
	return fmt.Errorf("fleet ship sizes must be [4 3 3 2 2 2 1 1 1 1], got: %v", sizes)
}

func ErrShipsTouching(x, y int) error {
	return fmt.Errorf("two ships touch each other around\tx: %d\ty: %d", x, y)
}

func ErrInvalidMode(mode string) error {
	return fmt.Errorf("mode must be either server or client, got: %s", mode)
}

func ErrInvalidTransport(transport string) error {
	return fmt.Errorf("transport must be either tcp or ws, got: %s", transport)
}

func ErrInvalidStage(stage string) error {
	return fmt.Errorf("invalid type of development stage: %s", stage)
}
