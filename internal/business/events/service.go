package events

import (
	"context"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultMaxWindow      = 400 * 24 * time.Hour
	DefaultMaxOccurrences = 5000
)

type Service struct {
	db     database.PGX
	logger *zap.SugaredLogger

	maxWindow      time.Duration
	maxOccurrences int

	eventsRepository      eventsRepository
	exceptionsRepository  exceptionsRepository
	completionsRepository completionsRepository
	membersRepository     membersRepository
	categoriesRepository  categoriesRepository
}

// Limits bound the work a single listing may cause.
type Limits struct {
	MaxWindow      time.Duration
	MaxOccurrences int
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, event *model.EventCreate) (int64, error)
	GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEventForUpdate(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEventsByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Event, error)
	GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error
	DeleteEvent(ctx context.Context, q database.Queryable, id int64) error
	DeleteEvents(ctx context.Context, q database.Queryable, ids []int64) error
}

type exceptionsRepository interface {
	GetExceptions(ctx context.Context, q database.Queryable, eventIDs []int64) ([]*model.Exception, error)
	GetException(ctx context.Context, q database.Queryable, eventID int64, date time.Time) (*model.Exception, error)
	GetExceptionByModifiedEvent(ctx context.Context, q database.Queryable, modifiedEventID int64) (*model.Exception, error)
	GetModifiedEventIDs(ctx context.Context, q database.Queryable, eventIDs []int64) ([]int64, error)
	UpsertException(ctx context.Context, q database.Queryable, exception *model.Exception) error
	ClearModifiedEvent(ctx context.Context, q database.Queryable, modifiedEventID int64) error
	DeleteExceptions(ctx context.Context, q database.Queryable, eventID int64, dates []time.Time) error
}

type completionsRepository interface {
	GetCompletions(ctx context.Context, q database.Queryable, eventIDs []int64, from, to time.Time) ([]*model.CompletionRecord, error)
	CountCompletions(ctx context.Context, q database.Queryable, eventID int64, date time.Time) (int, error)
	GetCompletionDates(ctx context.Context, q database.Queryable, eventID int64) ([]time.Time, error)
	MoveCompletions(ctx context.Context, q database.Queryable, fromEventID, toEventID int64, since time.Time) error
	DeleteCompletions(ctx context.Context, q database.Queryable, eventID int64, dates []time.Time) error
	DeleteCompletionsSince(ctx context.Context, q database.Queryable, eventID int64, since time.Time) error
}

type membersRepository interface {
	GetMembersByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Member, error)
}

type categoriesRepository interface {
	GetCategory(ctx context.Context, q database.Queryable, id int64) (*model.Category, error)
	GetCategoriesByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Category, error)
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	limits Limits,
	eventsRepo eventsRepository,
	exceptionsRepo exceptionsRepository,
	completionsRepo completionsRepository,
	membersRepo membersRepository,
	categoriesRepo categoriesRepository,
) *Service {
	if limits.MaxWindow <= 0 {
		limits.MaxWindow = DefaultMaxWindow
	}
	if limits.MaxOccurrences <= 0 {
		limits.MaxOccurrences = DefaultMaxOccurrences
	}

	return &Service{
		db:                    db,
		logger:                logger,
		maxWindow:             limits.MaxWindow,
		maxOccurrences:        limits.MaxOccurrences,
		eventsRepository:      eventsRepo,
		exceptionsRepository:  exceptionsRepo,
		completionsRepository: completionsRepo,
		membersRepository:     membersRepo,
		categoriesRepository:  categoriesRepo,
	}
}
