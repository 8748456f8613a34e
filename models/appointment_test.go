package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	assert.True(t, AppointmentBooked.CanTransitionTo(AppointmentCompleted))
	assert.True(t, AppointmentBooked.CanTransitionTo(AppointmentCancelled))
	assert.False(t, AppointmentBooked.CanTransitionTo(AppointmentBooked))

	assert.False(t, AppointmentCompleted.CanTransitionTo(AppointmentBooked))
	assert.False(t, AppointmentCompleted.CanTransitionTo(AppointmentCancelled))
	assert.False(t, AppointmentCancelled.CanTransitionTo(AppointmentBooked))

	assert.True(t, AppointmentCompleted.IsTerminal())
	assert.False(t, AppointmentStatus("no_show").IsValid())
	assert.False(t, AppointmentStatus("no_show").CanTransitionTo(AppointmentBooked))
}

func TestLinkStatusGrantsWrite(t *testing.T) {
	assert.True(t, LinkActive.GrantsWrite())
	assert.True(t, LinkApproved.GrantsWrite())
	assert.False(t, LinkPending.GrantsWrite())
	assert.False(t, LinkDischarged.GrantsWrite())
}
