package app

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/erazemk/healthpilot/internal/backend"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/lookup"
	"github.com/erazemk/healthpilot/internal/notify"
)

// Explain turns a failed operation into a notice for the user. what names
// the operation, e.g. "Failed to log water".
func Explain(what string, err error) notify.Notice {
	var (
		be     *backend.Error
		se     *lookup.StatusError
		urlErr *url.Error
		netErr net.Error
	)
	switch {
	case errors.Is(err, backend.ErrNotLoggedIn):
		return notify.Warnf("You must be logged in.")
	case errors.Is(err, lookup.ErrNotConfigured):
		return notify.Warnf("%s: lookup credentials are not configured.", what)
	case errors.Is(err, diary.ErrInvalidQuantity),
		errors.Is(err, diary.ErrInvalidCalories),
		errors.Is(err, diary.ErrUnknownSlot),
		errors.Is(err, diary.ErrInvalidSet),
		errors.Is(err, ErrInvalidWater):
		return notify.Warnf("%s: %v.", what, err)
	case errors.As(err, &be):
		return notify.Errorf("%s: %s", what, be.Message)
	case errors.As(err, &se):
		return notify.Errorf("%s: %s answered %d.", what, se.Service, se.Status)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return notify.Errorf("%s: the server took too long to answer.", what)
	case errors.As(err, &urlErr):
		return notify.Errorf("%s: could not reach the server.", what)
	default:
		return notify.Errorf("%s: %v", what, err)
	}
}

// SessionRejected reports whether err means the user has to log in again.
func SessionRejected(err error) bool {
	var be *backend.Error
	return errors.Is(err, backend.ErrNotLoggedIn) ||
		(errors.As(err, &be) && be.Status == 401)
}
