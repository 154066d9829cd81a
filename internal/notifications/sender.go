package notifications

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/SergeyKozhin/family-calendar-backend/internal/pkg/fcm"
	"go.uber.org/zap"
)

// Sender pushes task completion changes to the other participants of a task.
type Sender struct {
	db      database.PGX
	logger  *zap.SugaredLogger
	members membersRepository
	fcm     fcmService
}

type membersRepository interface {
	GetMembersByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Member, error)
}

type fcmService interface {
	SendMessageBatch(ctx context.Context, ms []*fcm.Message) (int, error)
}

func NewSender(
	db database.PGX,
	logger *zap.SugaredLogger,
	members membersRepository,
	fcm fcmService,
) *Sender {
	return &Sender{
		db:      db,
		logger:  logger,
		members: members,
		fcm:     fcm,
	}
}

// NotifyCompletion tells every participant of the occurrence except actor that
// actor completed or reopened it. A nil Sender sends nothing.
func (s *Sender) NotifyCompletion(ctx context.Context, occ *model.Occurrence, actor *model.Member, completed bool) error {
	if s == nil {
		return nil
	}

	var ids []int64
	for _, id := range occ.Participants {
		if id != actor.ID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	members, err := s.members.GetMembersByIDs(ctx, s.db, ids)
	if err != nil {
		return fmt.Errorf("get members: %w", err)
	}

	messages := buildMessages(occ, actor, members, kindOf(completed))
	if len(messages) == 0 {
		return nil
	}

	failed, err := s.fcm.SendMessageBatch(ctx, messages)
	if err != nil {
		return fmt.Errorf("send notifications: %w", err)
	}

	s.logger.Debugw("completion notifications sent",
		"event", occ.EventID,
		"date", occ.Date.Format(model.DateFormat),
		"sent", len(messages),
		"failed", failed,
	)

	return nil
}

func buildMessages(occ *model.Occurrence, actor *model.Member, members []*model.Member, kind notificationKind) []*fcm.Message {
	var messages []*fcm.Message
	for _, m := range members {
		if !m.Notify || m.PushToken == "" || m.FamilyID != occ.FamilyID {
			continue
		}

		messages = append(messages, &fcm.Message{
			Token: m.PushToken,
			Title: occ.Title,
			Body:  kind.body(actor.Name, occ.Title),
			Data: map[string]string{
				"notification_type": fmt.Sprintf("%v", kind),
				"event_id":          fmt.Sprintf("%v", occ.CompletionKey()),
				"occurrence_date":   occ.Date.Format(model.DateFormat),
				"family_id":         fmt.Sprintf("%v", occ.FamilyID),
				"member_id":         fmt.Sprintf("%v", actor.ID),
			},
		})
	}

	return messages
}
