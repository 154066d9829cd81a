package events

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	errInjected    = errors.New("injected failure")
	errUnsupported = errors.New("raw queries are not supported by the in-memory store")
)

type exceptionKey struct {
	eventID int64
	date    time.Time
}

type completionRecordKey struct {
	eventID  int64
	memberID int64
	date     time.Time
}

// memState is one snapshot of every table the service touches.
type memState struct {
	nextID      int64
	events      map[int64]*model.Event
	exceptions  map[exceptionKey]*model.Exception
	completions map[completionRecordKey]*model.CompletionRecord
	members     map[int64]*model.Member
	categories  map[int64]*model.Category
}

func newMemState() *memState {
	return &memState{
		events:      make(map[int64]*model.Event),
		exceptions:  make(map[exceptionKey]*model.Exception),
		completions: make(map[completionRecordKey]*model.CompletionRecord),
		members:     make(map[int64]*model.Member),
		categories:  make(map[int64]*model.Category),
	}
}

func cloneEvent(e *model.Event) *model.Event {
	c := *e
	c.Recurrence = e.Recurrence.Clone()
	c.Participants = append([]int64{}, e.Participants...)
	if e.CategoryID != nil {
		id := *e.CategoryID
		c.CategoryID = &id
	}
	return &c
}

func cloneException(e *model.Exception) *model.Exception {
	c := *e
	if e.ModifiedEventID != nil {
		id := *e.ModifiedEventID
		c.ModifiedEventID = &id
	}
	return &c
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.nextID = s.nextID
	for k, v := range s.events {
		c.events[k] = cloneEvent(v)
	}
	for k, v := range s.exceptions {
		c.exceptions[k] = cloneException(v)
	}
	for k, v := range s.completions {
		r := *v
		c.completions[k] = &r
	}
	for k, v := range s.members {
		m := *v
		c.members[k] = &m
	}
	for k, v := range s.categories {
		cat := *v
		c.categories[k] = &cat
	}
	return c
}

type noQueries struct{}

func (noQueries) Exec(context.Context, database.Sqlizer) (pgconn.CommandTag, error) {
	return nil, errUnsupported
}

func (noQueries) Get(context.Context, interface{}, database.Sqlizer) error {
	return errUnsupported
}

func (noQueries) Select(context.Context, interface{}, database.Sqlizer) error {
	return errUnsupported
}

func (noQueries) ExecRaw(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return nil, errUnsupported
}

// memDB is a database.PGX whose transactions work on a copy of the committed
// state and publish it on commit.
type memDB struct {
	noQueries
	state *memState

	// failOn makes the repository method with this name fail.
	failOn  string
	commits int
}

func newMemDB() *memDB {
	return &memDB{state: newMemState()}
}

func (m *memDB) GetPool(context.Context) *pgxpool.Pool {
	return nil
}

func (m *memDB) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	return &memTx{db: m, state: m.state.clone()}, nil
}

type memTx struct {
	noQueries
	db    *memDB
	state *memState
	done  bool
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.state = t.state
	t.db.commits++
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	return nil
}

// memRepo implements every repository the service depends on.
type memRepo struct {
	db *memDB
}

func (r *memRepo) state(q database.Queryable) *memState {
	if tx, ok := q.(*memTx); ok {
		return tx.state
	}
	return r.db.state
}

func (r *memRepo) fail(op string) error {
	if r.db.failOn == op {
		return errInjected
	}
	return nil
}

func (r *memRepo) CreateEvent(_ context.Context, q database.Queryable, event *model.EventCreate) (int64, error) {
	if err := r.fail("CreateEvent"); err != nil {
		return 0, err
	}

	s := r.state(q)
	s.nextID++
	e := cloneEvent(&model.Event{
		ID:          s.nextID,
		CreatedAt:   time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.nextID) * time.Second),
		EventCreate: *event,
	})
	e.UpdatedAt = e.CreatedAt
	if e.Participants == nil {
		e.Participants = []int64{}
	}
	s.events[e.ID] = e

	return e.ID, nil
}

func (r *memRepo) GetEventByID(_ context.Context, q database.Queryable, id int64) (*model.Event, error) {
	e, ok := r.state(q).events[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return cloneEvent(e), nil
}

func (r *memRepo) GetEventForUpdate(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	return r.GetEventByID(ctx, q, id)
}

func (r *memRepo) GetEventsByIDs(_ context.Context, q database.Queryable, ids []int64) ([]*model.Event, error) {
	var res []*model.Event
	for _, id := range ids {
		if e, ok := r.state(q).events[id]; ok {
			res = append(res, cloneEvent(e))
		}
	}
	return res, nil
}

func (r *memRepo) GetEvents(_ context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	from := model.DateOf(filter.From)
	to := model.DateOf(filter.To).AddDate(0, 0, 1)

	var res []*model.Event
	for _, e := range r.state(q).events {
		if e.FamilyID != filter.FamilyID || !e.From.Before(to) {
			continue
		}
		if e.Recurring() {
			if e.Recurrence.Until != nil && e.Recurrence.Until.Before(from) {
				continue
			}
		} else if e.From.Before(from) {
			continue
		}
		res = append(res, cloneEvent(e))
	}

	sort.Slice(res, func(i, j int) bool {
		if !res[i].From.Equal(res[j].From) {
			return res[i].From.Before(res[j].From)
		}
		return res[i].ID < res[j].ID
	})

	return res, nil
}

func (r *memRepo) UpdateEvent(_ context.Context, q database.Queryable, event *model.Event) error {
	if err := r.fail("UpdateEvent"); err != nil {
		return err
	}

	s := r.state(q)
	if _, ok := s.events[event.ID]; !ok {
		return model.ErrNoRecord
	}
	s.events[event.ID] = cloneEvent(event)

	return nil
}

func (r *memRepo) DeleteEvent(ctx context.Context, q database.Queryable, id int64) error {
	return r.DeleteEvents(ctx, q, []int64{id})
}

func (r *memRepo) DeleteEvents(_ context.Context, q database.Queryable, ids []int64) error {
	if err := r.fail("DeleteEvent"); err != nil {
		return err
	}

	s := r.state(q)
	for _, id := range ids {
		delete(s.events, id)
		for k, e := range s.exceptions {
			if e.EventID == id {
				delete(s.exceptions, k)
			} else if e.ModifiedEventID != nil && *e.ModifiedEventID == id {
				e.ModifiedEventID = nil
			}
		}
		for k, c := range s.completions {
			if c.EventID == id {
				delete(s.completions, k)
			}
		}
	}

	return nil
}

func (r *memRepo) GetExceptions(_ context.Context, q database.Queryable, eventIDs []int64) ([]*model.Exception, error) {
	ids := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}

	var res []*model.Exception
	for _, e := range r.state(q).exceptions {
		if _, ok := ids[e.EventID]; ok {
			res = append(res, cloneException(e))
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].EventID != res[j].EventID {
			return res[i].EventID < res[j].EventID
		}
		return res[i].OccurrenceDate.Before(res[j].OccurrenceDate)
	})

	return res, nil
}

func (r *memRepo) GetException(_ context.Context, q database.Queryable, eventID int64, date time.Time) (*model.Exception, error) {
	e, ok := r.state(q).exceptions[exceptionKey{eventID, model.DateOf(date)}]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return cloneException(e), nil
}

func (r *memRepo) GetExceptionByModifiedEvent(_ context.Context, q database.Queryable, modifiedEventID int64) (*model.Exception, error) {
	for _, e := range r.state(q).exceptions {
		if e.ModifiedEventID != nil && *e.ModifiedEventID == modifiedEventID {
			return cloneException(e), nil
		}
	}
	return nil, model.ErrNoRecord
}

func (r *memRepo) GetModifiedEventIDs(_ context.Context, q database.Queryable, eventIDs []int64) ([]int64, error) {
	ids := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}

	var res []int64
	for _, e := range r.state(q).exceptions {
		if e.ModifiedEventID == nil {
			continue
		}
		if _, ok := ids[*e.ModifiedEventID]; ok {
			res = append(res, *e.ModifiedEventID)
		}
	}

	return res, nil
}

func (r *memRepo) UpsertException(_ context.Context, q database.Queryable, exception *model.Exception) error {
	if err := r.fail("UpsertException"); err != nil {
		return err
	}

	e := cloneException(exception)
	e.OccurrenceDate = model.DateOf(e.OccurrenceDate)
	r.state(q).exceptions[exceptionKey{e.EventID, e.OccurrenceDate}] = e

	return nil
}

func (r *memRepo) ClearModifiedEvent(_ context.Context, q database.Queryable, modifiedEventID int64) error {
	for _, e := range r.state(q).exceptions {
		if e.ModifiedEventID != nil && *e.ModifiedEventID == modifiedEventID {
			e.ModifiedEventID = nil
		}
	}
	return nil
}

func (r *memRepo) DeleteExceptions(_ context.Context, q database.Queryable, eventID int64, dates []time.Time) error {
	if err := r.fail("DeleteExceptions"); err != nil {
		return err
	}

	s := r.state(q)
	for _, d := range dates {
		delete(s.exceptions, exceptionKey{eventID, model.DateOf(d)})
	}

	return nil
}

func (r *memRepo) GetCompletions(_ context.Context, q database.Queryable, eventIDs []int64, from, to time.Time) ([]*model.CompletionRecord, error) {
	ids := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}

	var res []*model.CompletionRecord
	for _, c := range r.state(q).completions {
		if _, ok := ids[c.EventID]; !ok {
			continue
		}
		if c.OccurrenceDate.Before(model.DateOf(from)) || c.OccurrenceDate.After(model.DateOf(to)) {
			continue
		}
		rec := *c
		res = append(res, &rec)
	}

	return res, nil
}

func (r *memRepo) CountCompletions(_ context.Context, q database.Queryable, eventID int64, date time.Time) (int, error) {
	n := 0
	for _, c := range r.state(q).completions {
		if c.EventID == eventID && c.OccurrenceDate.Equal(model.DateOf(date)) {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) GetCompletionDates(_ context.Context, q database.Queryable, eventID int64) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	var res []time.Time
	for _, c := range r.state(q).completions {
		if c.EventID != eventID {
			continue
		}
		if _, ok := seen[c.OccurrenceDate]; !ok {
			seen[c.OccurrenceDate] = struct{}{}
			res = append(res, c.OccurrenceDate)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })

	return res, nil
}

func (r *memRepo) MoveCompletions(_ context.Context, q database.Queryable, fromEventID, toEventID int64, since time.Time) error {
	if err := r.fail("MoveCompletions"); err != nil {
		return err
	}

	s := r.state(q)
	for k, c := range s.completions {
		if c.EventID != fromEventID || c.OccurrenceDate.Before(model.DateOf(since)) {
			continue
		}
		delete(s.completions, k)
		c.EventID = toEventID
		s.completions[completionRecordKey{toEventID, c.MemberID, c.OccurrenceDate}] = c
	}

	return nil
}

func (r *memRepo) DeleteCompletions(_ context.Context, q database.Queryable, eventID int64, dates []time.Time) error {
	s := r.state(q)
	set := dateSet(dates)
	for k, c := range s.completions {
		if _, ok := set[c.OccurrenceDate]; ok && c.EventID == eventID {
			delete(s.completions, k)
		}
	}
	return nil
}

func (r *memRepo) DeleteCompletionsSince(_ context.Context, q database.Queryable, eventID int64, since time.Time) error {
	s := r.state(q)
	for k, c := range s.completions {
		if c.EventID == eventID && !c.OccurrenceDate.Before(model.DateOf(since)) {
			delete(s.completions, k)
		}
	}
	return nil
}

func (r *memRepo) GetMembersByIDs(_ context.Context, q database.Queryable, ids []int64) ([]*model.Member, error) {
	var res []*model.Member
	for _, id := range ids {
		if m, ok := r.state(q).members[id]; ok {
			member := *m
			res = append(res, &member)
		}
	}
	return res, nil
}

func (r *memRepo) GetCategory(_ context.Context, q database.Queryable, id int64) (*model.Category, error) {
	c, ok := r.state(q).categories[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	category := *c
	return &category, nil
}

func (r *memRepo) GetCategoriesByIDs(_ context.Context, q database.Queryable, ids []int64) ([]*model.Category, error) {
	var res []*model.Category
	for _, id := range ids {
		if c, ok := r.state(q).categories[id]; ok {
			category := *c
			res = append(res, &category)
		}
	}
	return res, nil
}

// addCompletion writes a completion record straight into the committed state.
func (m *memDB) addCompletion(eventID, memberID int64, date time.Time) {
	m.state.completions[completionRecordKey{eventID, memberID, date}] = &model.CompletionRecord{
		EventID:        eventID,
		MemberID:       memberID,
		OccurrenceDate: date,
		CompletedAt:    date,
	}
}

func (m *memDB) hasCompletion(eventID int64, date time.Time) bool {
	for _, c := range m.state.completions {
		if c.EventID == eventID && c.OccurrenceDate.Equal(date) {
			return true
		}
	}
	return false
}
