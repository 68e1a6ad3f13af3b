package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/dbtest"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/notifications"
	"go.uber.org/zap"
)

type memEvents struct {
	rows map[string]*model.Event
}

func newMemEvents(events ...*model.Event) *memEvents {
	m := &memEvents{rows: make(map[string]*model.Event)}
	for _, e := range events {
		m.rows[e.ID] = e
	}
	return m
}

func (m *memEvents) ids() []string {
	var res []string
	for id := range m.rows {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

func (m *memEvents) CreateEvents(_ context.Context, _ database.Queryable, events []*model.Event) error {
	for _, e := range events {
		m.rows[e.ID] = e
	}
	return nil
}

func (m *memEvents) GetEventByID(_ context.Context, _ database.Queryable, id string) (*model.Event, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return e, nil
}

func (m *memEvents) GetEvents(_ context.Context, _ database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	var res []*model.Event
	for _, id := range m.ids() {
		e := m.rows[id]
		if e.OwnerID == filter.OwnerID && !e.Date.Before(filter.From) && !e.Date.After(filter.To) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (m *memEvents) series(baseID, ownerID string) ([]*model.Event, error) {
	match, err := identity.SiblingPredicate(baseID)
	if err != nil {
		return nil, err
	}

	var res []*model.Event
	for _, id := range m.ids() {
		if e := m.rows[id]; match(id) && e.OwnerID == ownerID {
			res = append(res, e)
		}
	}
	return res, nil
}

func (m *memEvents) GetSeries(_ context.Context, _ database.Queryable, baseID, ownerID string) ([]*model.Event, error) {
	return m.series(baseID, ownerID)
}

func applyUpdate(e *model.Event, upd *model.EventUpdate) {
	e.Title = upd.Title
	e.Notes = upd.Notes
	e.StartTime = upd.StartTime
	e.EndTime = upd.EndTime
	e.AllDay = upd.AllDay
	e.Category = upd.Category
	e.Color = upd.Color
}

func (m *memEvents) UpdateEvent(_ context.Context, _ database.Queryable, id, ownerID string, upd *model.EventUpdate) (int64, error) {
	e, ok := m.rows[id]
	if !ok || e.OwnerID != ownerID {
		return 0, nil
	}
	applyUpdate(e, upd)
	return 1, nil
}

func (m *memEvents) UpdateSeries(_ context.Context, _ database.Queryable, baseID, ownerID string, upd *model.EventUpdate) (int64, error) {
	rows, err := m.series(baseID, ownerID)
	if err != nil {
		return 0, err
	}
	for _, e := range rows {
		applyUpdate(e, upd)
	}
	return int64(len(rows)), nil
}

func (m *memEvents) DeleteEvent(_ context.Context, _ database.Queryable, id, ownerID string) (int64, error) {
	e, ok := m.rows[id]
	if !ok || e.OwnerID != ownerID {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *memEvents) DeleteSeries(_ context.Context, _ database.Queryable, baseID, ownerID string) (int64, error) {
	rows, err := m.series(baseID, ownerID)
	if err != nil {
		return 0, err
	}
	for _, e := range rows {
		delete(m.rows, e.ID)
	}
	return int64(len(rows)), nil
}

type memShares struct {
	rows []*model.SharedEvent
}

func (m *memShares) GetShares(_ context.Context, _ database.Queryable, filter model.SharesFilter) ([]*model.SharedEvent, error) {
	ids := make(map[string]struct{})
	for _, id := range filter.EventIDs {
		ids[id] = struct{}{}
	}

	var res []*model.SharedEvent
	for _, sh := range m.rows {
		if _, ok := ids[sh.EventID]; ok || len(ids) == 0 {
			cp := *sh
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (m *memShares) GetSeriesRecipients(_ context.Context, _ database.Queryable, baseID string) ([]string, error) {
	match, err := identity.SiblingPredicate(baseID)
	if err != nil {
		return nil, err
	}

	var res []string
	for _, sh := range m.rows {
		if match(sh.EventID) {
			res = append(res, sh.RecipientID)
		}
	}
	return res, nil
}

func (m *memShares) UpdateSnapshot(_ context.Context, _ database.Queryable, eventID string, snapshot model.EventSnapshot) error {
	for _, sh := range m.rows {
		if sh.EventID == eventID {
			sh.EventData = snapshot
		}
	}
	return nil
}

func (m *memShares) deleteWhere(match func(string) bool) int64 {
	var kept []*model.SharedEvent
	var n int64
	for _, sh := range m.rows {
		if match(sh.EventID) {
			n++
			continue
		}
		kept = append(kept, sh)
	}
	m.rows = kept
	return n
}

func (m *memShares) DeleteByEvent(_ context.Context, _ database.Queryable, eventID string) (int64, error) {
	return m.deleteWhere(func(id string) bool { return id == eventID }), nil
}

func (m *memShares) DeleteBySeries(_ context.Context, _ database.Queryable, baseID string) (int64, error) {
	match, err := identity.SiblingPredicate(baseID)
	if err != nil {
		return 0, err
	}
	return m.deleteWhere(match), nil
}

type published struct {
	userID string
	tab    string
}

type fakeRefresh struct {
	mu  sync.Mutex
	got []published
}

func (f *fakeRefresh) Publish(_ context.Context, userID, tab string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, published{userID, tab})
	return nil
}

func (f *fakeRefresh) has(userID, tab string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.got {
		if p.userID == userID && p.tab == tab {
			return true
		}
	}
	return false
}

type fakeNotifier struct {
	shares []*model.SharedEvent
	kinds  []notifications.Kind
}

func (f *fakeNotifier) NotifyShares(_ context.Context, shares []*model.SharedEvent, kind notifications.Kind) error {
	if len(shares) == 0 {
		return nil
	}
	f.shares = append(f.shares, shares...)
	f.kinds = append(f.kinds, kind)
	return nil
}

type testEnv struct {
	db       *dbtest.Recorder
	events   *memEvents
	shares   *memShares
	refresh  *fakeRefresh
	notifier *fakeNotifier
	service  *Service
}

func newTestEnv(events ...*model.Event) *testEnv {
	env := &testEnv{
		db:       &dbtest.Recorder{},
		events:   newMemEvents(events...),
		shares:   &memShares{},
		refresh:  &fakeRefresh{},
		notifier: &fakeNotifier{},
	}
	env.service = NewService(env.db, zap.NewNop().Sugar(), env.events, env.shares, env.refresh, env.notifier, Options{
		Horizon:      365 * 24 * time.Hour,
		MaxInstances: 500,
	})
	env.service.now = func() time.Time { return time.UnixMilli(1736899200000) }
	return env
}

func day(s string) time.Time {
	t, err := identity.ParseDateKey(s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(id, owner, date string) *model.Event {
	return &model.Event{
		ID: id,
		EventCreate: model.EventCreate{
			OwnerID: owner,
			Title:   "title " + id,
			Date:    day(date),
			EndDate: day(date),
		},
	}
}

func share(id int64, eventID, recipient string) *model.SharedEvent {
	return &model.SharedEvent{
		ID:     id,
		Status: model.ShareStatusAccepted,
		SharedEventCreate: model.SharedEventCreate{
			EventID:     eventID,
			SenderID:    "alice",
			RecipientID: recipient,
			EventData:   model.EventSnapshot{Title: "title " + eventID},
		},
	}
}
