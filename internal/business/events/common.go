package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

var ErrInvalidRange = errors.New("invalid event date range")

func getRule(t model.RepeatType, from, until time.Time, count int) (*rrule.RRule, error) {
	var freq rrule.Frequency
	var interval int

	switch t {
	case model.RepeatTypeEveryDay:
		freq = rrule.DAILY
		interval = 1
	case model.RepeatTypeEveryThreeDays:
		freq = rrule.DAILY
		interval = 3
	case model.RepeatTypeEveryWeek:
		freq = rrule.WEEKLY
		interval = 1
	case model.RepeatTypeEveryMonth:
		freq = rrule.MONTHLY
		interval = 1
	case model.RepeatTypeEveryYear:
		freq = rrule.YEARLY
		interval = 1
	default:
		return nil, fmt.Errorf("unknown repeat type: %v", t)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  from.UTC(),
		Until:    until.UTC(),
		Count:    count,
	})
	if err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return rule, nil
}

// newEventID returns a fresh base id of the form event_<unixms>_<8 hex>.
func newEventID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("event_%d_%s", now.UnixMilli(), suffix)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func shiftTime(t *time.Time, days int) *time.Time {
	if t == nil {
		return nil
	}
	shifted := t.AddDate(0, 0, days)
	return &shifted
}

type occurrenceDay struct {
	date    time.Time
	endDate time.Time
	offset  int
}

// expandDays lists every calendar day covered by info: each recurrence
// occurrence plus the extra days of a multi-day span. Days are unique and in
// order, the first one is info.Date. A span longer than opts.MaxInstances is
// rejected, later occurrences that would push the total past it are dropped.
func (s *Service) expandDays(info *model.EventCreate) ([]occurrenceDay, error) {
	date := truncateDay(info.Date)
	span := daysBetween(info.Date, info.EndDate)
	if span < 0 {
		return nil, ErrInvalidRange
	}
	if s.opts.MaxInstances > 0 && span+1 > s.opts.MaxInstances {
		return nil, fmt.Errorf("event spans %d days, at most %d allowed: %w", span+1, s.opts.MaxInstances, ErrInvalidRange)
	}

	starts := []time.Time{date}
	if info.RepeatType != model.RepeatTypeNone {
		until := date.Add(s.opts.Horizon)
		if info.RepeatUntil != nil {
			until = truncateDay(*info.RepeatUntil)
		}
		if until.Before(date) {
			return nil, ErrInvalidRange
		}

		rule, err := getRule(info.RepeatType, date, until, s.opts.MaxInstances)
		if err != nil {
			return nil, err
		}
		starts = rule.All()
	}

	var res []occurrenceDay
	seen := make(map[time.Time]struct{})
	for _, start := range starts {
		start = truncateDay(start)

		var days []occurrenceDay
		for k := 0; k <= span; k++ {
			day := start.AddDate(0, 0, k)
			if _, ok := seen[day]; ok {
				continue
			}
			days = append(days, occurrenceDay{
				date:    day,
				endDate: start.AddDate(0, 0, span),
				offset:  daysBetween(date, start),
			})
		}

		if s.opts.MaxInstances > 0 && len(res)+len(days) > s.opts.MaxInstances {
			break
		}

		for _, d := range days {
			seen[d.date] = struct{}{}
		}
		res = append(res, days...)
	}

	return res, nil
}
