package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap/zaptest"
)

type membersStub map[int64]*model.Member

func (m membersStub) GetMember(_ context.Context, _ database.Queryable, id int64) (*model.Member, error) {
	member, ok := m[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return member, nil
}

type categoriesStub struct {
	categories []*model.Category
}

func (c *categoriesStub) CreateCategory(_ context.Context, _ database.Queryable, category *model.CategoryCreate) (int64, error) {
	for _, existing := range c.categories {
		if existing.FamilyID == category.FamilyID && existing.Name == category.Name {
			return 0, model.ErrAlreadyExists
		}
	}
	id := int64(len(c.categories) + 1)
	c.categories = append(c.categories, &model.Category{ID: id, CategoryCreate: *category})
	return id, nil
}

func (c *categoriesStub) GetCategory(_ context.Context, _ database.Queryable, id int64) (*model.Category, error) {
	for _, category := range c.categories {
		if category.ID == id {
			return category, nil
		}
	}
	return nil, model.ErrNoRecord
}

func (c *categoriesStub) GetFamilyCategories(_ context.Context, _ database.Queryable, familyID int64) ([]*model.Category, error) {
	var res []*model.Category
	for _, category := range c.categories {
		if category.FamilyID == familyID {
			res = append(res, category)
		}
	}
	return res, nil
}

type mutation struct {
	actor   *model.Member
	eventID int64
	date    time.Time
	scope   model.Scope
	update  *model.EventUpdate
}

type eventsStub struct {
	occurrences []*model.Occurrence
	created     *model.EventCreate
	mutations   []mutation
	err         error
}

func (e *eventsStub) CreateEvent(_ context.Context, actor *model.Member, info *model.EventCreate) (*model.Event, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.created = info
	create := *info
	create.CreatorID = actor.ID
	return &model.Event{ID: 100, EventCreate: create}, nil
}

func (e *eventsStub) ListOccurrences(_ context.Context, familyID int64, from, to time.Time) ([]*model.Occurrence, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.occurrences, nil
}

func (e *eventsStub) MutateEvent(_ context.Context, actor *model.Member, eventID int64, date time.Time, scope model.Scope, update *model.EventUpdate) (*model.Event, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.mutations = append(e.mutations, mutation{actor, eventID, date, scope, update})
	if update == nil {
		return nil, nil
	}
	return &model.Event{ID: eventID, EventCreate: model.EventCreate{Title: update.Title, From: update.From, To: update.To}}, nil
}

type toggle struct {
	eventID   int64
	memberID  *int64
	date      time.Time
	completed bool
}

type completionsStub struct {
	toggles []toggle
	err     error
}

func (c *completionsStub) ToggleCompletion(_ context.Context, eventID int64, memberID *int64, date time.Time, completed bool) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.toggles = append(c.toggles, toggle{eventID, memberID, date, completed})
	return completed, nil
}

type testApi struct {
	*Api
	events      *eventsStub
	completions *completionsStub
	categories  *categoriesStub
}

func newTestApi(t *testing.T) *testApi {
	t.Helper()

	members := membersStub{
		1: {ID: 1, FamilyID: 1, Name: "Ann", Role: model.RoleAdmin},
		2: {ID: 2, FamilyID: 1, Name: "Kid", Role: model.RoleChild},
		3: {ID: 3, FamilyID: 2, Name: "Dan", Role: model.RoleAdult},
	}
	ta := &testApi{
		events:      &eventsStub{},
		completions: &completionsStub{},
		categories:  &categoriesStub{},
	}

	a, err := NewApi(zaptest.NewLogger(t).Sugar(), time.UTC, nil, members, ta.categories, ta.events, ta.completions)
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	ta.Api = a

	return ta
}

func (ta *testApi) do(t *testing.T, method, target string, member int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if member != 0 {
		req.Header.Set(memberHeader, fmt.Sprint(member))
	}

	rec := httptest.NewRecorder()
	ta.ServeHTTP(rec, req)

	return rec
}

func TestHealthcheck(t *testing.T) {
	ta := newTestApi(t)
	if rec := ta.do(t, http.MethodGet, "/healthcheck", 0, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMemberIdentity(t *testing.T) {
	ta := newTestApi(t)

	tests := []struct {
		name   string
		target string
		member int64
		header string
		want   int
	}{
		{"no member", "/families/1/occurrences?from=2024-01-01&to=2024-01-31", 0, "", http.StatusUnauthorized},
		{"unknown member", "/families/1/occurrences?from=2024-01-01&to=2024-01-31", 99, "", http.StatusUnauthorized},
		{"malformed header", "/member", 0, "abc", http.StatusBadRequest},
		{"other family", "/families/1/occurrences?from=2024-01-01&to=2024-01-31", 3, "", http.StatusForbidden},
		{"own family", "/families/1/occurrences?from=2024-01-01&to=2024-01-31", 2, "", http.StatusOK},
		{"current member", "/member", 2, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.member != 0 {
				req.Header.Set(memberHeader, fmt.Sprint(tt.member))
			}
			if tt.header != "" {
				req.Header.Set(memberHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			ta.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestListOccurrences(t *testing.T) {
	ta := newTestApi(t)
	series := int64(5)
	ta.events.occurrences = []*model.Occurrence{
		{
			EventID:  6,
			SeriesID: &series,
			FamilyID: 1,
			Date:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			From:     time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC),
			To:       time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
			Title:    "New Title",
			Category: &model.Category{ID: 1, CategoryCreate: model.CategoryCreate{Name: "chores", Color: colorful.Color{G: 1}}},
			IsTask:   true,
		},
	}

	rec := ta.do(t, http.MethodGet, "/families/1/occurrences?from=2024-01-01&to=2024-01-31", 1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("got %d occurrences", len(resp))
	}
	if resp[0]["date"] != "2024-01-15" || resp[0]["from"] != "2024-01-15T09:00:00" || resp[0]["series_id"] != float64(5) {
		t.Errorf("occurrence = %v", resp[0])
	}

	if rec := ta.do(t, http.MethodGet, "/families/1/occurrences?from=2024-01-01", 1, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing window end: status = %d", rec.Code)
	}

	ta.events.err = fmt.Errorf("events.ListOccurrences: %w", model.ErrInvalidWindow)
	if rec := ta.do(t, http.MethodGet, "/families/1/occurrences?from=2024-01-01&to=2030-01-01", 1, ""); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid window: status = %d", rec.Code)
	}
}

func TestCreateEvent(t *testing.T) {
	ta := newTestApi(t)

	body := `{
		"title": "trash",
		"from": "2024-01-02T19:00:00",
		"to": "2024-01-02T19:15:00",
		"recurrence": {"frequency": "WEEKLY", "count": 10},
		"is_task": true,
		"xp_points": 5,
		"participants": [2]
	}`
	rec := ta.do(t, http.MethodPost, "/families/1/events", 1, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	created := ta.events.created
	if created.FamilyID != 1 || created.Recurrence == nil || created.Recurrence.Frequency != model.FrequencyWeekly || *created.Recurrence.Count != 10 {
		t.Fatalf("created = %+v", created)
	}
	if !created.From.Equal(time.Date(2024, time.January, 2, 19, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", created.From)
	}

	invalid := `{"title": "", "from": "2024-01-02T19:00:00", "to": "2024-01-02T18:00:00", "recurrence": {"frequency": "HOURLY"}}`
	rec = ta.do(t, http.MethodPost, "/families/1/events", 1, invalid)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid event: status = %d", rec.Code)
	}
	var resp struct {
		Error map[string]string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"title", "to", "recurrence.frequency"} {
		if _, ok := resp.Error[field]; !ok {
			t.Errorf("no error for %s: %v", field, resp.Error)
		}
	}

	ta.events.err = fmt.Errorf("wrapped: %w", model.ErrForbidden)
	valid := `{"title": "x", "from": "2024-01-02T19:00:00", "to": "2024-01-02T19:00:00"}`
	if rec := ta.do(t, http.MethodPost, "/families/1/events", 2, valid); rec.Code != http.StatusForbidden {
		t.Errorf("forbidden: status = %d", rec.Code)
	}
}

func TestMutateOccurrence(t *testing.T) {
	ta := newTestApi(t)

	body := `{"title": "New Title", "from": "2024-01-15T09:00:00", "to": "2024-01-15T10:00:00"}`
	rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15?scope=THIS_AND_FOLLOWING", 1, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d: %s", rec.Code, rec.Body)
	}

	rec = ta.do(t, http.MethodDelete, "/events/5/occurrences/2024-01-15?scope=THIS", 1, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d: %s", rec.Code, rec.Body)
	}

	if len(ta.events.mutations) != 2 {
		t.Fatalf("got %d mutations", len(ta.events.mutations))
	}
	update, del := ta.events.mutations[0], ta.events.mutations[1]
	if update.scope != model.ScopeThisAndFollowing || update.update == nil || update.update.Title != "New Title" {
		t.Errorf("update = %+v", update)
	}
	if del.scope != model.ScopeThis || del.update != nil || del.eventID != 5 || del.actor.ID != 1 {
		t.Errorf("delete = %+v", del)
	}
	if !del.date.Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", del.date)
	}

	tests := []struct {
		name   string
		target string
		member int64
		err    error
		want   int
	}{
		{"no member", "/events/5/occurrences/2024-01-15?scope=ALL", 0, nil, http.StatusUnauthorized},
		{"missing scope", "/events/5/occurrences/2024-01-15", 1, nil, http.StatusBadRequest},
		{"invalid scope", "/events/5/occurrences/2024-01-15?scope=SOME", 1, nil, http.StatusUnprocessableEntity},
		{"bad date", "/events/5/occurrences/15-01-2024?scope=ALL", 1, nil, http.StatusNotFound},
		{"cross family", "/events/5/occurrences/2024-01-15?scope=ALL", 3, model.ErrCrossFamilyAccess, http.StatusForbidden},
		{"truncation", "/events/5/occurrences/2023-01-15?scope=THIS_AND_FOLLOWING", 1, model.ErrAmbiguousTruncation, http.StatusUnprocessableEntity},
		{"missing occurrence", "/events/5/occurrences/2024-01-16?scope=THIS", 1, model.ErrNoRecord, http.StatusNotFound},
		{"write failure", "/events/5/occurrences/2024-01-15?scope=ALL", 1, fmt.Errorf("%w: update: %w", model.ErrWriteFailed, model.ErrNoRecord), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApi(t)
			ta.events.err = tt.err

			rec := ta.do(t, http.MethodDelete, tt.target, tt.member, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestToggleCompletion(t *testing.T) {
	ta := newTestApi(t)

	rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 2, `{"completed": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := ta.completions.toggles[0]; got.memberID == nil || *got.memberID != 2 || !got.completed || got.eventID != 5 {
		t.Errorf("toggle = %+v", got)
	}

	rec = ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 0, `{"completed": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous: status = %d: %s", rec.Code, rec.Body)
	}
	if got := ta.completions.toggles[1]; got.memberID != nil {
		t.Errorf("anonymous toggle carries member %v", *got.memberID)
	}

	if rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 2, `{"completed": true, "member_id": 1}`); rec.Code != http.StatusForbidden {
		t.Errorf("on behalf of another member: status = %d", rec.Code)
	}
	if rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 2, `{}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing state: status = %d", rec.Code)
	}

	ta.completions.err = model.ErrNotTask
	if rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 2, `{"completed": true}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("not a task: status = %d", rec.Code)
	}

	ta.completions.err = model.ErrMissingMember
	if rec := ta.do(t, http.MethodPut, "/events/5/occurrences/2024-01-15/completion", 0, `{"completed": true}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing member: status = %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	ta := newTestApi(t)

	if rec := ta.do(t, http.MethodPost, "/families/1/categories", 2, `{"name": "chores", "color": "#00FF00"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("child creates category: status = %d", rec.Code)
	}

	rec := ta.do(t, http.MethodPost, "/families/1/categories", 1, `{"name": "chores", "color": "#00FF00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	if rec := ta.do(t, http.MethodPost, "/families/1/categories", 1, `{"name": "chores", "color": "#ff0000"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate name: status = %d", rec.Code)
	}
	if rec := ta.do(t, http.MethodPost, "/families/1/categories", 1, `{"name": "school", "color": "red"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid color: status = %d", rec.Code)
	}

	rec = ta.do(t, http.MethodGet, "/families/1/categories", 2, "")
	var resp []categoryResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Name != "chores" || resp[0].Color != "#00ff00" {
		t.Errorf("categories = %+v", resp)
	}
}

func TestExportCalendar(t *testing.T) {
	ta := newTestApi(t)
	ta.events.occurrences = []*model.Occurrence{
		{
			EventID: 6,
			Date:    time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			From:    time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC),
			To:      time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
			Title:   "piano",
		},
	}

	rec := ta.do(t, http.MethodGet, "/families/1/calendar.ics?from=2024-01-01&to=2024-01-31", 1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "SUMMARY:piano") {
		t.Errorf("body = %s", body)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		client bool
	}{
		{model.ErrNoRecord, http.StatusNotFound, true},
		{fmt.Errorf("x: %w", model.ErrInvalidRecurrenceRule), http.StatusUnprocessableEntity, true},
		{model.ErrCrossFamilyAccess, http.StatusForbidden, true},
		{fmt.Errorf("%w: op: %w", model.ErrWriteFailed, model.ErrNoRecord), http.StatusInternalServerError, false},
		{fmt.Errorf("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		status, client := errorStatus(tt.err)
		if status != tt.status || client != tt.client {
			t.Errorf("errorStatus(%v) = %d, %v; want %d, %v", tt.err, status, client, tt.status, tt.client)
		}
	}
}
