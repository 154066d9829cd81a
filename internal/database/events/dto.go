package events

import (
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

type eventDTO struct {
	ID             int64
	FamilyID       int64
	CategoryID     *int64
	Title          string
	Description    string
	Location       string
	AllDay         bool
	StartDate      time.Time
	EndDate        time.Time
	CreatorID      int64
	Frequency      int
	RepeatInterval int
	RepeatUntil    *time.Time
	RepeatCount    *int
	IsTask         bool
	XPPoints       int `db:"xp_points"`
	IsRequired     bool
	Participants   []int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func mapToEvent(dto *eventDTO) *model.Event {
	var rule *model.RecurrenceRule
	if model.Frequency(dto.Frequency) != model.FrequencyNone {
		rule = &model.RecurrenceRule{
			Frequency: model.Frequency(dto.Frequency),
			Interval:  dto.RepeatInterval,
			Until:     dto.RepeatUntil,
			Count:     dto.RepeatCount,
		}
	}

	participants := dto.Participants
	if participants == nil {
		participants = []int64{}
	}

	return &model.Event{
		ID:        dto.ID,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
		EventCreate: model.EventCreate{
			FamilyID:     dto.FamilyID,
			CategoryID:   dto.CategoryID,
			Title:        dto.Title,
			Description:  dto.Description,
			Location:     dto.Location,
			AllDay:       dto.AllDay,
			From:         dto.StartDate,
			To:           dto.EndDate,
			CreatorID:    dto.CreatorID,
			Recurrence:   rule,
			IsTask:       dto.IsTask,
			XPPoints:     dto.XPPoints,
			IsRequired:   dto.IsRequired,
			Participants: participants,
		},
	}
}

func mapToEvents(dtos []*eventDTO) []*model.Event {
	res := make([]*model.Event, len(dtos))
	for i, d := range dtos {
		res[i] = mapToEvent(d)
	}

	return res
}

// recurrenceColumns flattens a rule into frequency, interval, until and count columns.
func recurrenceColumns(rule *model.RecurrenceRule) (int, int, *time.Time, *int) {
	if rule == nil || rule.Frequency == model.FrequencyNone {
		return int(model.FrequencyNone), 1, nil, nil
	}

	interval := rule.Interval
	if interval == 0 {
		interval = 1
	}

	return int(rule.Frequency), interval, rule.Until, rule.Count
}

func participantsColumn(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
