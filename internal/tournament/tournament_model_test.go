package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsRegistrations(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	open := &Tournament{
		Status:               StatusActive,
		RegistrationDeadline: now.Add(time.Hour),
	}
	assert.NoError(t, open.AcceptsRegistrations(now))

	upcoming := &Tournament{
		Status:               StatusUpcoming,
		RegistrationDeadline: now.Add(time.Hour),
	}
	assert.ErrorIs(t, upcoming.AcceptsRegistrations(now), ErrNotOpen)

	ended := &Tournament{
		Status:               StatusEnded,
		RegistrationDeadline: now.Add(time.Hour),
	}
	assert.ErrorIs(t, ended.AcceptsRegistrations(now), ErrNotOpen)

	expired := &Tournament{
		Status:               StatusActive,
		RegistrationDeadline: now.Add(-time.Minute),
	}
	assert.ErrorIs(t, expired.AcceptsRegistrations(now), ErrDeadlinePassed)

	// Registration at the exact deadline still counts.
	atDeadline := &Tournament{
		Status:               StatusActive,
		RegistrationDeadline: now,
	}
	assert.NoError(t, atDeadline.AcceptsRegistrations(now))
}
