package completions

import (
	"context"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"go.uber.org/zap"
)

// Service tracks per-occurrence completion of task events. Completing an
// occurrence as any participant completes it for everyone.
type Service struct {
	db       database.PGX
	logger   *zap.SugaredLogger
	fallback FallbackPolicy

	eventsService         eventsService
	completionsRepository completionsRepository
	membersRepository     membersRepository
	xpLedger              xpLedger
	notifier              notifier
}

type eventsService interface {
	GetOccurrence(ctx context.Context, eventID int64, date time.Time) (*model.Occurrence, error)
}

type completionsRepository interface {
	CreateCompletion(ctx context.Context, q database.Queryable, record *model.CompletionRecord) (bool, error)
	DeleteCompletion(ctx context.Context, q database.Queryable, eventID, memberID int64, date time.Time) (bool, error)
}

type membersRepository interface {
	GetMember(ctx context.Context, q database.Queryable, id int64) (*model.Member, error)
	GetFamilyMembers(ctx context.Context, q database.Queryable, familyID int64) ([]*model.Member, error)
}

type xpLedger interface {
	Award(ctx context.Context, memberID, eventID int64, date time.Time, points int) error
	Revoke(ctx context.Context, memberID, eventID int64, date time.Time, points int) error
}

type notifier interface {
	NotifyCompletion(ctx context.Context, occ *model.Occurrence, actor *model.Member, completed bool) error
}

// NewService builds the tracker. notifier may be nil to disable push notifications.
func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	fallback FallbackPolicy,
	eventsService eventsService,
	completionsRepo completionsRepository,
	membersRepo membersRepository,
	xpLedger xpLedger,
	notifier notifier,
) *Service {
	return &Service{
		db:                    db,
		logger:                logger,
		fallback:              fallback,
		eventsService:         eventsService,
		completionsRepository: completionsRepo,
		membersRepository:     membersRepo,
		xpLedger:              xpLedger,
		notifier:              notifier,
	}
}
