package unit

import (
	"testing"
	"time"

	"social_network_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func TestFindParticipant(t *testing.T) {
	room := domain.ChatRoom{
		Participants: []domain.Participant{
			{UserID: 1, UserName: "Alice", Status: domain.ParticipantActive},
			{UserID: 2, UserName: "Bob", Status: domain.ParticipantLeft},
		},
	}

	p := room.FindParticipant(2)
	assert.NotNil(t, p)
	assert.Equal(t, "Bob", p.UserName)

	assert.Nil(t, room.FindParticipant(99))
}

func TestActiveParticipantCount(t *testing.T) {
	leaveTs := time.Now()
	room := domain.ChatRoom{
		Participants: []domain.Participant{
			{UserID: 1, Status: domain.ParticipantActive},
			{UserID: 2, Status: domain.ParticipantLeft, LeaveTimestamp: &leaveTs},
			{UserID: 3, Status: domain.ParticipantActive},
		},
	}

	assert.Equal(t, 2, room.ActiveParticipantCount())
}

func TestCommonResponseEnvelopes(t *testing.T) {
	success := domain.NewSuccessResponse("payload")
	assert.Equal(t, "SUCCESS", success.Result)
	assert.Equal(t, "payload", success.Data)

	failure := domain.NewErrorResponse("CHAT_001", "room not found")
	assert.Equal(t, "ERROR", failure.Result)
	assert.Equal(t, "CHAT_001", failure.ErrorCode)
	assert.Equal(t, "room not found", failure.ErrorMessage)
}
