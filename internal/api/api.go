package api

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Api struct {
	handler  http.Handler
	logger   *zap.SugaredLogger
	calendar *time.Location

	db         database.PGX
	members    membersRepository
	categories categoriesRepository

	eventsService      eventsService
	completionsService completionsService
}

type membersRepository interface {
	GetMember(ctx context.Context, q database.Queryable, id int64) (*model.Member, error)
}

type categoriesRepository interface {
	CreateCategory(ctx context.Context, q database.Queryable, category *model.CategoryCreate) (int64, error)
	GetCategory(ctx context.Context, q database.Queryable, id int64) (*model.Category, error)
	GetFamilyCategories(ctx context.Context, q database.Queryable, familyID int64) ([]*model.Category, error)
}

type eventsService interface {
	CreateEvent(ctx context.Context, actor *model.Member, info *model.EventCreate) (*model.Event, error)
	ListOccurrences(ctx context.Context, familyID int64, from, to time.Time) ([]*model.Occurrence, error)
	MutateEvent(ctx context.Context, actor *model.Member, eventID int64, date time.Time, scope model.Scope, update *model.EventUpdate) (*model.Event, error)
}

type completionsService interface {
	ToggleCompletion(ctx context.Context, eventID int64, memberID *int64, date time.Time, completed bool) (bool, error)
}

// NewApi builds the HTTP handler. calendar is the zone stored wall clock
// times belong to, used by the iCalendar export.
func NewApi(
	logger *zap.SugaredLogger,
	calendar *time.Location,
	db database.PGX,
	members membersRepository,
	categories categoriesRepository,
	eventsService eventsService,
	completionsService completionsService,
) (*Api, error) {
	a := &Api{
		logger:             logger,
		calendar:           calendar,
		db:                 db,
		members:            members,
		categories:         categories,
		eventsService:      eventsService,
		completionsService: completionsService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.memberCtx).Group(func(r chi.Router) {
		r.With(a.requireMember).Get("/member", a.getMemberHandler)

		r.With(a.requireMember, a.familyCtx).Route("/families/{familyID}", func(r chi.Router) {
			r.Get("/occurrences", a.listOccurrencesHandler)
			r.Get("/calendar.ics", a.exportCalendarHandler)
			r.Post("/events", a.createEventHandler)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.getCategoriesHandler)
				r.Post("/", a.createCategoryHandler)
			})
		})

		r.Route("/events/{eventID}/occurrences/{date}", func(r chi.Router) {
			r.With(a.requireMember).Put("/", a.updateOccurrenceHandler)
			r.With(a.requireMember).Delete("/", a.deleteOccurrenceHandler)
			r.Put("/completion", a.toggleCompletionHandler)
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
