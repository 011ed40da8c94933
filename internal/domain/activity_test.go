package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivity_HasParticipant(t *testing.T) {
	a := &Activity{Participants: []string{"a@example.com", "b@example.com"}}

	assert.True(t, a.HasParticipant("b@example.com"))
	assert.False(t, a.HasParticipant("c@example.com"))
	assert.False(t, (&Activity{}).HasParticipant("a@example.com"))
}

func TestActivity_CloneIsIndependent(t *testing.T) {
	a := &Activity{Name: "Chess Club", MaxParticipants: 12, Participants: []string{"a@example.com"}}

	c := a.Clone()
	c.Participants[0] = "changed@example.com"
	c.Participants = append(c.Participants, "extra@example.com")

	assert.Equal(t, []string{"a@example.com"}, a.Participants)
	assert.Equal(t, "Chess Club", c.Name)
	assert.Equal(t, 12, c.MaxParticipants)
}

func TestActivity_CloneKeepsEmptySliceNonNil(t *testing.T) {
	c := (&Activity{}).Clone()
	assert.NotNil(t, c.Participants)
	assert.Empty(t, c.Participants)
}

func TestMapErrorToCode(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{ErrActivityNotFound, CodeNotFound},
		{ErrParticipantNotFound, CodeNotFound},
		{fmt.Errorf("wrapped: %w", ErrAlreadySignedUp), CodeAlreadySignedUp},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToCode(tt.err))
		})
	}
}
