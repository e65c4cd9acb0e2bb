package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoStore       = errors.New("no store configured")
	ErrUnknownPlayer = errors.New("player not in the coming pool")
	ErrInvalidStat   = errors.New("stat patch has a non-numeric field")
	ErrInvalidTeam   = errors.New("unknown team")
	ErrInvalidSlot   = errors.New("map slot out of range")
	ErrNoMatchClient = errors.New("no match client configured")
)
