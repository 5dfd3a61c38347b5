package economy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCapacity means every serial of a print run is used.
	ErrCapacity = errors.New("serial capacity exhausted")
	// ErrConflict means a guarded write lost to a concurrent one.
	ErrConflict = errors.New("conflict")
	// ErrNotOwner is the ownership flavour of ErrConflict.
	ErrNotOwner = fmt.Errorf("%w: card is not owned by caller", ErrConflict)
	ErrNotFound = errors.New("not found")
	// ErrInsufficientResources is matched by every InsufficientResourcesError.
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrConfigDegraded is logged, never returned to users.
	ErrConfigDegraded = errors.New("configuration degraded")
)

// Shortfall is how much of one resource is missing.
type Shortfall struct {
	Resource string
	Need     int64
	Have     int64
}

type InsufficientResourcesError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientResourcesError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: need %d, have %d", s.Resource, s.Need, s.Have))
	}
	return "insufficient resources (" + strings.Join(parts, "; ") + ")"
}

func (e *InsufficientResourcesError) Is(target error) bool {
	return target == ErrInsufficientResources
}

type CooldownError struct {
	Scope     string // "channel", "user" or "daily"
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s cooldown active for %s", e.Scope, e.Remaining.Round(time.Second))
}

type WrongChannelError struct {
	Allowed string
}

func (e *WrongChannelError) Error() string {
	return "drops are restricted to channel " + e.Allowed
}
