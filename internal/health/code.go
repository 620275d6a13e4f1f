// Package health defines the three-valued health classification consumed by
// the external monitoring system and the fixed table that maps state tokens
// reported by introspection endpoints onto it.
package health

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownToken is returned when an endpoint reports a state token that has
// no entry in the token table.
var ErrUnknownToken = errors.New("health: unknown state token")

// Code is the discrete health value printed for monitor-style commands.
// The integer values are part of the external contract.
type Code int

const (
	Failed  Code = 0 // confirmed down, or reachable but unhealthy
	Active  Code = 1 // confirmed up and functional
	Passive Code = 2 // endpoint unreachable
)

// String returns the symbolic name of c.
func (c Code) String() string {
	switch c {
	case Failed:
		return "FAILED"
	case Active:
		return "ACTIVE"
	case Passive:
		return "PASSIVE"
	default:
		return "Code(" + strconv.Itoa(int(c)) + ")"
	}
}

// Text renders c the way the monitoring agent expects it on stdout.
func (c Code) Text() string { return strconv.Itoa(int(c)) }

// State tokens understood by FromToken.
const (
	TokenYes         = "Yes"
	TokenEstablished = "Established"
	TokenNo          = "No"
)

// FromToken maps a raw state token onto a Code. Tokens outside the table are
// an error; they are never silently classified.
func FromToken(token string) (Code, error) {
	switch token {
	case TokenYes, TokenEstablished:
		return Active, nil
	case TokenNo:
		return Failed, nil
	default:
		return Failed, fmt.Errorf("%w %q", ErrUnknownToken, token)
	}
}
