package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	memberrepo "social_network_service/internal/member/repository"
	notifdomain "social_network_service/internal/notification/domain"
	"social_network_service/pkg"
	"social_network_service/pkg/logger"
)

const defaultRoomName = "untitled"

// pushPreviewLimit first N characters of the content carried in the
// offline push preview
const pushPreviewLimit = 100

// PushNotifier delivers an out-of-band notification to a user with no
// live handle. Failures are logged by the implementation, never
// propagated into the send path.
type PushNotifier interface {
	SendToUser(ctx context.Context, userID int64, notification notifdomain.Notification)
}

// ChatUseCase orchestrates room lifecycle, message fan-out, read
// tracking and the bridge to offline push notification.
type ChatUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	userRepo memberrepo.UserRepository
	presence *PresenceRegistry
	notifier PushNotifier
}

// NewChatUseCase init chat use case
func NewChatUseCase(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	userRepo memberrepo.UserRepository,
	presence *PresenceRegistry,
	notifier PushNotifier,
) *ChatUseCase {
	return &ChatUseCase{
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		presence: presence,
		notifier: notifier,
	}
}

// CreateRoom resolves the participant identities and creates the room,
// or reactivates an existing active room with the exact same participant
// set instead of duplicating it.
func (uc *ChatUseCase) CreateRoom(ctx context.Context, req domain.CreateChatRoomRequest, creatorID int64) (string, error) {
	if pkg.Contains(req.ParticipantIDs, creatorID) {
		return "", domain.ErrInvalidParticipantList
	}

	allParticipantIDs := append(append([]int64{}, req.ParticipantIDs...), creatorID)

	existing, err := uc.roomRepo.FindActiveRoomByParticipants(ctx, allParticipantIDs)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := uc.roomRepo.ReactivateLeftParticipants(ctx, existing.ID.Hex()); err != nil {
			return "", err
		}
		return existing.ID.Hex(), nil
	}

	users, err := uc.userRepo.FindByIDs(ctx, allParticipantIDs)
	if err != nil {
		return "", err
	}
	if len(users) != len(allParticipantIDs) {
		return "", domain.ErrParticipantNotFound
	}

	now := time.Now()
	participants := make([]domain.Participant, 0, len(users))
	for _, user := range users {
		participants = append(participants, domain.Participant{
			UserID:           user.ID,
			UserLoginID:      user.LoginID,
			UserName:         user.UserName,
			ProfileImagePath: user.ProfileImagePath,
			Status:           domain.ParticipantActive,
			UnreadCount:      0,
		})
	}

	room := &domain.ChatRoom{
		Name:          req.Name,
		Participants:  participants,
		Status:        domain.RoomActive,
		CreatedAt:     now,
		LastMessageAt: now,
		MessageCount:  0,
	}

	return uc.roomRepo.CreateRoom(ctx, room)
}

// CheckExistingRoom two-participant lookup restricted to active rooms,
// empty string when no direct room exists
func (uc *ChatUseCase) CheckExistingRoom(ctx context.Context, userID, otherUserID int64) (string, error) {
	room, err := uc.roomRepo.FindActiveRoomByParticipants(ctx, []int64{userID, otherUserID})
	if err != nil {
		return "", err
	}
	if room == nil {
		return "", nil
	}
	return room.ID.Hex(), nil
}

// GetRooms paged room summaries, most recent message first. The last
// message shown is bounded by the requester's own leave timestamp so a
// rejoined room does not resurface pre-leave history.
func (uc *ChatUseCase) GetRooms(ctx context.Context, userID int64, page, size int) ([]domain.ChatRoomResponse, error) {
	rooms, err := uc.roomRepo.FindRoomsForUser(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ChatRoomResponse, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]

		var after *time.Time
		if p := room.FindParticipant(userID); p != nil {
			after = p.LeaveTimestamp
		}

		lastMessage, err := uc.msgRepo.FindLastVisibleMessage(ctx, room.ID.Hex(), after)
		if err != nil {
			return nil, err
		}

		responses = append(responses, domain.ChatRoomResponse{
			ID:           room.ID.Hex(),
			Name:         room.Name,
			Participants: room.Participants,
			LastMessage:  lastMessage,
			MessageCount: room.MessageCount,
			CreatedAt:    room.CreatedAt,
		})
	}

	return responses, nil
}

// GetMessages paged message history newest first, bounded by the
// requester's leave timestamp
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID int64, roomID string, page, size int) ([]domain.ChatMessage, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var after *time.Time
	if room != nil {
		if p := room.FindParticipant(userID); p != nil {
			after = p.LeaveTimestamp
		}
	}

	return uc.msgRepo.FindVisibleMessages(ctx, roomID, after, page, size)
}

// Connect registers a live handle for the session's user
func (uc *ChatUseCase) Connect(ctx context.Context, conn domain.ChatConn, session domain.ChatSession) error {
	if conn == nil {
		return domain.ErrChatConnection
	}
	uc.presence.Register(session.UserID, conn)
	return nil
}

// Disconnect closes and removes every live handle attributed to the user
func (uc *ChatUseCase) Disconnect(userID int64) {
	uc.presence.UnregisterAll(userID)
}

// SendMessage resolves the target room, appends the message, updates the
// room aggregates and fans the message out to every other active
// participant, falling back to push notification for participants with
// no live handle.
func (uc *ChatUseCase) SendMessage(ctx context.Context, session domain.ChatSession, req domain.ChatMessageRequest) (*domain.ChatMessage, error) {
	var roomID string
	switch {
	case req.RoomID != nil:
		roomID = *req.RoomID
	case req.OtherUserID != nil:
		id, err := uc.CreateRoom(ctx, domain.CreateChatRoomRequest{
			Name:           defaultRoomName,
			ParticipantIDs: []int64{*req.OtherUserID},
		}, session.UserID)
		if err != nil {
			return nil, err
		}
		roomID = id
	default:
		return nil, domain.ErrInvalidParameter
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, domain.ErrRoomNotFound
	}

	// sending into a room the user previously left implicitly rejoins
	if p := room.FindParticipant(session.UserID); p != nil && p.Status == domain.ParticipantLeft {
		if err := uc.roomRepo.ReactivateParticipant(ctx, roomID, session.UserID); err != nil {
			return nil, err
		}
	}

	activeRoom, err := uc.roomRepo.FindActiveRoomForUser(ctx, roomID, session.UserID)
	if err != nil {
		return nil, err
	}
	if activeRoom == nil {
		return nil, domain.ErrRoomNotFound
	}

	now := time.Now()
	msg := &domain.ChatMessage{
		RoomID:     roomID,
		SenderID:   session.UserID,
		SenderName: session.UserName,
		Content:    req.Content,
		CreatedAt:  now,
	}

	if _, err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err := uc.roomRepo.BumpMessageStats(ctx, roomID, now); err != nil {
		return nil, err
	}
	if err := uc.roomRepo.IncrementUnreadForOthers(ctx, roomID, session.UserID); err != nil {
		return nil, err
	}

	uc.fanOut(ctx, activeRoom, session, msg)

	return msg, nil
}

// fanOut pushes the message over every live handle of every other active
// participant. A participant with zero live handles gets a push
// notification with a truncated preview instead.
func (uc *ChatUseCase) fanOut(ctx context.Context, room *domain.ChatRoom, session domain.ChatSession, msg *domain.ChatMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Errorf("marshal chat message failed:", err)
		return
	}

	sender := room.FindParticipant(session.UserID)

	for i := range room.Participants {
		participant := &room.Participants[i]
		if participant.Status != domain.ParticipantActive || participant.UserID == session.UserID {
			continue
		}

		conns := uc.presence.ActiveConns(participant.UserID)
		for _, conn := range conns {
			// one dead handle must not block delivery to the rest
			if err := conn.WriteText(payload); err != nil {
				logger.Log.Error("websocket fan-out failed",
					zap.Int64("userID", participant.UserID),
					zap.String("roomID", msg.RoomID),
					zap.Error(err),
				)
			}
		}

		if len(conns) == 0 {
			notification := notifdomain.Notification{
				Type:       "chat",
				Title:      session.UserName,
				Body:       truncateContent(msg.Content, pushPreviewLimit),
				RoomID:     &msg.RoomID,
				SenderID:   &msg.SenderID,
				SenderName: &msg.SenderName,
			}
			if sender != nil {
				notification.SenderLoginID = &sender.UserLoginID
				notification.SenderProfileImagePath = sender.ProfileImagePath
			}
			uc.notifier.SendToUser(ctx, participant.UserID, notification)
		}
	}
}

func truncateContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit])
}

// MarkAsRead zeroes the participant's unread counter and records the
// last read message, idempotent
func (uc *ChatUseCase) MarkAsRead(ctx context.Context, userID int64, roomID, messageID string) error {
	return uc.roomRepo.ResetUnread(ctx, roomID, userID, messageID)
}

// LeaveRoom marks the participant LEFT and hides pre-leave history from
// their future view. When the leaving participant is the last active one
// the room and all its messages are deleted outright.
func (uc *ChatUseCase) LeaveRoom(ctx context.Context, userID int64, roomID string) error {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return domain.ErrRoomNotFound
	}

	now := time.Now()

	if room.ActiveParticipantCount() == 1 {
		if err := uc.roomRepo.DeleteRoom(ctx, roomID); err != nil {
			return err
		}
		return uc.msgRepo.DeleteByRoom(ctx, roomID)
	}

	if err := uc.roomRepo.MarkParticipantLeft(ctx, roomID, userID, now); err != nil {
		return err
	}
	return uc.msgRepo.ApplyLeaveBarrier(ctx, roomID, now)
}
