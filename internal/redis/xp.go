package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/gomodule/redigo/redis"
)

type connPool interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

// XPLedger hands experience point changes to the gamification service through
// a Redis list it consumes.
type XPLedger struct {
	pool connPool
	key  string
	now  func() time.Time
}

func NewXPLedger(pool connPool, key string) *XPLedger {
	return &XPLedger{
		pool: pool,
		key:  key,
		now:  time.Now,
	}
}

type xpEntry struct {
	MemberID       int64     `json:"member_id"`
	EventID        int64     `json:"event_id"`
	OccurrenceDate string    `json:"occurrence_date"`
	Points         int       `json:"points"`
	Reason         string    `json:"reason"`
	RecordedAt     time.Time `json:"recorded_at"`
}

const (
	reasonTaskCompleted = "task_completed"
	reasonTaskReopened  = "task_reopened"
)

// Award credits points to the member for completing the occurrence of eventID on date.
func (l *XPLedger) Award(ctx context.Context, memberID, eventID int64, date time.Time, points int) error {
	return l.push(ctx, &xpEntry{
		MemberID:       memberID,
		EventID:        eventID,
		OccurrenceDate: date.Format(model.DateFormat),
		Points:         points,
		Reason:         reasonTaskCompleted,
	})
}

// Revoke takes back points awarded for the occurrence.
func (l *XPLedger) Revoke(ctx context.Context, memberID, eventID int64, date time.Time, points int) error {
	return l.push(ctx, &xpEntry{
		MemberID:       memberID,
		EventID:        eventID,
		OccurrenceDate: date.Format(model.DateFormat),
		Points:         -points,
		Reason:         reasonTaskReopened,
	})
}

func (l *XPLedger) push(ctx context.Context, entry *xpEntry) error {
	entry.RecordedAt = l.now().UTC()

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	conn, err := l.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "RPUSH", l.key, payload); err != nil {
		return fmt.Errorf("push entry: %w", err)
	}

	return nil
}
