package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/healthpilot/internal/backend"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/lookup"
	"github.com/erazemk/healthpilot/internal/notify"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		err  error
		want notify.Notice
	}{
		{backend.ErrNotLoggedIn, notify.Warnf("You must be logged in.")},
		{fmt.Errorf("searching foods: %w", lookup.ErrNotConfigured), notify.Warnf("Search: lookup credentials are not configured.")},
		{&backend.Error{Status: 500, Message: "db down"}, notify.Errorf("Search: db down")},
		{&lookup.StatusError{Service: "edamam", Status: 429}, notify.Errorf("Search: edamam answered 429.")},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), notify.Errorf("Search: the server took too long to answer.")},
		{diary.ErrInvalidQuantity, notify.Warnf("Search: %v.", diary.ErrInvalidQuantity)},
		{errors.New("odd"), notify.Errorf("Search: odd")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Explain("Search", tt.err), "%v", tt.err)
	}
}

func TestSessionRejected(t *testing.T) {
	assert.True(t, SessionRejected(backend.ErrNotLoggedIn))
	assert.True(t, SessionRejected(fmt.Errorf("loading: %w", &backend.Error{Status: 401, Message: "Unauthorized"})))
	assert.False(t, SessionRejected(&backend.Error{Status: 500}))
	assert.False(t, SessionRejected(errors.New("boom")))
}
