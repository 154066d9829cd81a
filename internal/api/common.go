package api

import (
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

type memberResp struct {
	ID       int64  `json:"id"`
	FamilyID int64  `json:"family_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func mapToMemberResp(member *model.Member) (*memberResp, error) {
	return &memberResp{
		ID:       member.ID,
		FamilyID: member.FamilyID,
		Name:     member.Name,
		Role:     member.Role.String(),
	}, nil
}

type categoryResp struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func mapToCategoryResp(category *model.Category) (*categoryResp, error) {
	return &categoryResp{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color.Hex(),
	}, nil
}

type eventResp struct {
	ID           int64       `json:"id"`
	FamilyID     int64       `json:"family_id"`
	CategoryID   *int64      `json:"category_id,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Location     string      `json:"location,omitempty"`
	AllDay       bool        `json:"all_day"`
	From         dateTime    `json:"from"`
	To           dateTime    `json:"to"`
	CreatorID    int64       `json:"creator_id"`
	Recurrence   *recurrence `json:"recurrence,omitempty"`
	IsTask       bool        `json:"is_task"`
	XPPoints     int         `json:"xp_points,omitempty"`
	IsRequired   bool        `json:"is_required,omitempty"`
	Participants []int64     `json:"participants"`
}

func mapToEventResp(event *model.Event) (*eventResp, error) {
	return &eventResp{
		ID:           event.ID,
		FamilyID:     event.FamilyID,
		CategoryID:   event.CategoryID,
		Title:        event.Title,
		Description:  event.Description,
		Location:     event.Location,
		AllDay:       event.AllDay,
		From:         dateTime(event.From),
		To:           dateTime(event.To),
		CreatorID:    event.CreatorID,
		Recurrence:   mapToRecurrence(event.Recurrence),
		IsTask:       event.IsTask,
		XPPoints:     event.XPPoints,
		IsRequired:   event.IsRequired,
		Participants: event.Participants,
	}, nil
}

type occurrenceResp struct {
	EventID      int64         `json:"event_id"`
	SeriesID     *int64        `json:"series_id,omitempty"`
	Date         date          `json:"date"`
	From         dateTime      `json:"from"`
	To           dateTime      `json:"to"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Location     string        `json:"location,omitempty"`
	AllDay       bool          `json:"all_day"`
	Category     *categoryResp `json:"category,omitempty"`
	Participants []int64       `json:"participants"`
	IsTask       bool          `json:"is_task"`
	XPPoints     int           `json:"xp_points,omitempty"`
	IsRequired   bool          `json:"is_required,omitempty"`
	Completed    bool          `json:"completed"`
}

func mapToOccurrenceResp(occ *model.Occurrence) (*occurrenceResp, error) {
	res := &occurrenceResp{
		EventID:      occ.EventID,
		SeriesID:     occ.SeriesID,
		Date:         date(occ.Date),
		From:         dateTime(occ.From),
		To:           dateTime(occ.To),
		Title:        occ.Title,
		Description:  occ.Description,
		Location:     occ.Location,
		AllDay:       occ.AllDay,
		Participants: occ.Participants,
		IsTask:       occ.IsTask,
		XPPoints:     occ.XPPoints,
		IsRequired:   occ.IsRequired,
		Completed:    occ.Completed,
	}
	if occ.Category != nil {
		res.Category, _ = mapToCategoryResp(occ.Category)
	}

	return res, nil
}
