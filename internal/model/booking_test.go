package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("student")
	assert.True(t, ok)
	assert.Equal(t, RoleStudent, role)

	role, ok = ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	for _, raw := range []string{"", "Admin", "superuser", "STUDENT"} {
		_, ok := ParseRole(raw)
		assert.False(t, ok, "role %q should be rejected", raw)
	}
}

func TestBookingStatusHelpers(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.True(t, BookingStatusApproved.IsTerminal())
	assert.True(t, BookingStatusRejected.IsTerminal())

	assert.True(t, BookingStatusPending.IsActive())
	assert.True(t, BookingStatusApproved.IsActive())
	assert.False(t, BookingStatusRejected.IsActive())
}
