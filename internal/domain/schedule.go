package domain

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidClock   = errors.New("time must be HH:MM")
	ErrInvalidRange   = errors.New("start time must be before end time")
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrSlotOverlap    = errors.New("schedule slots overlap")
)

// ParseClock converts "HH:MM" into minutes after midnight.
// Both fields must be exactly two digits.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidClock
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// ClockRange parses a start/end pair and checks start < end.
func ClockRange(start, end string) (int, int, error) {
	from, err := ParseClock(start)
	if err != nil {
		return 0, 0, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return 0, 0, err
	}
	if from >= to {
		return 0, 0, ErrInvalidRange
	}
	return from, to, nil
}

// ScheduleSlot is one weekly working window of a PT.
type ScheduleSlot struct {
	Weekday int    `bson:"thu" json:"thu"` // 0 = Sunday (CN) .. 6 = Saturday
	Start   string `bson:"gioBatDau" json:"gioBatDau"`
	End     string `bson:"gioKetThuc" json:"gioKetThuc"`
}

// WorkSchedule is the weekly schedule of a PT. There is one document per PT.
type WorkSchedule struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"maPT" json:"maPT"`
	Slots     []ScheduleSlot     `bson:"lichLamViec" json:"lichLamViec"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeSlots validates slots and returns them sorted by weekday and start.
func NormalizeSlots(slots []ScheduleSlot) ([]ScheduleSlot, error) {
	type span struct {
		slot     ScheduleSlot
		from, to int
	}
	spans := make([]span, 0, len(slots))
	for _, sl := range slots {
		if sl.Weekday < 0 || sl.Weekday > 6 {
			return nil, ErrInvalidWeekday
		}
		from, to, err := ClockRange(sl.Start, sl.End)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span{slot: sl, from: from, to: to})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].slot.Weekday != spans[j].slot.Weekday {
			return spans[i].slot.Weekday < spans[j].slot.Weekday
		}
		return spans[i].from < spans[j].from
	})
	out := make([]ScheduleSlot, len(spans))
	for i, sp := range spans {
		if i > 0 && spans[i-1].slot.Weekday == sp.slot.Weekday && spans[i-1].to > sp.from {
			return nil, ErrSlotOverlap
		}
		out[i] = sp.slot
	}
	return out, nil
}

// Covers reports whether the schedule has a slot on weekday containing [from, to).
func (ws *WorkSchedule) Covers(weekday, from, to int) bool {
	if ws == nil {
		return false
	}
	for _, sl := range ws.Slots {
		if sl.Weekday != weekday {
			continue
		}
		s, e, err := ClockRange(sl.Start, sl.End)
		if err != nil {
			continue
		}
		if from >= s && to <= e {
			return true
		}
	}
	return false
}
