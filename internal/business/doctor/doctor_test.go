package doctor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/dbtest"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type memEvents map[string]*model.Event

func (m memEvents) GetEventsByIDs(_ context.Context, _ database.Queryable, ids []string) ([]*model.Event, error) {
	var res []*model.Event
	for _, id := range ids {
		if e, ok := m[id]; ok {
			res = append(res, e)
		}
	}
	return res, nil
}

type countingEvents struct {
	memEvents
	calls [][]string
}

func (c *countingEvents) GetEventsByIDs(ctx context.Context, q database.Queryable, ids []string) ([]*model.Event, error) {
	c.calls = append(c.calls, ids)
	return c.memEvents.GetEventsByIDs(ctx, q, ids)
}

type memShares struct {
	rows    []*model.SharedEvent
	updated []string
	deleted []int64
}

func (m *memShares) GetShares(_ context.Context, _ database.Queryable, _ model.SharesFilter) ([]*model.SharedEvent, error) {
	return m.rows, nil
}

func (m *memShares) UpdateSnapshot(_ context.Context, _ database.Queryable, eventID string, _ model.EventSnapshot) error {
	m.updated = append(m.updated, eventID)
	return nil
}

func (m *memShares) DeleteByIDs(_ context.Context, _ database.Queryable, ids []int64) (int64, error) {
	m.deleted = append(m.deleted, ids...)
	return int64(len(ids)), nil
}

type fakeRefresh struct {
	users map[string]int
}

func (f *fakeRefresh) Publish(_ context.Context, userID, _ string) error {
	f.users[userID]++
	return nil
}

func fixture() (*Service, *memShares, *fakeRefresh, *dbtest.Recorder) {
	jan15 := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	live := &model.Event{ID: "event_1_ab", EventCreate: model.EventCreate{OwnerID: "alice", Title: "Lunch", Date: jan15, EndDate: jan15}}

	events := memEvents{live.ID: live}
	shares := &memShares{rows: []*model.SharedEvent{
		{ID: 1, SharedEventCreate: model.SharedEventCreate{EventID: "event_1_ab", RecipientID: "bob", EventData: live.Snapshot()}},
		{ID: 2, SharedEventCreate: model.SharedEventCreate{EventID: "event_1_ab", RecipientID: "carol", EventData: model.EventSnapshot{Title: "Old lunch", Date: jan15, EndDate: jan15}}},
		{ID: 3, SharedEventCreate: model.SharedEventCreate{EventID: "event_9_zz_2025-01-16", RecipientID: "bob"}},
		{ID: 4, SharedEventCreate: model.SharedEventCreate{EventID: "", RecipientID: "dave"}},
	}}
	rf := &fakeRefresh{users: map[string]int{}}
	db := &dbtest.Recorder{}

	return NewService(db, zap.NewNop().Sugar(), events, shares, rf), shares, rf, db
}

func TestDiagnose(t *testing.T) {
	s, _, _, _ := fixture()

	report, err := s.Diagnose(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Checked != 4 {
		t.Errorf("checked = %d, want 4", report.Checked)
	}
	if len(report.Orphaned) != 1 || report.Orphaned[0].Share.ID != 3 {
		t.Fatalf("orphaned = %+v", report.Orphaned)
	}
	if want := (identity.ID{Kind: identity.KindInstance, BaseID: "event_9_zz", DateKey: "2025-01-16"}); report.Orphaned[0].ID != want {
		t.Errorf("orphan id = %+v, want %+v", report.Orphaned[0].ID, want)
	}
	if len(report.Stale) != 1 || report.Stale[0].Share.ID != 2 {
		t.Errorf("stale = %+v", report.Stale)
	}
	if len(report.Malformed) != 1 || report.Malformed[0].Share.ID != 4 {
		t.Errorf("malformed = %+v", report.Malformed)
	}
	if report.Clean() {
		t.Error("report is clean")
	}
}

func TestDiagnoseLoadsEventsOnce(t *testing.T) {
	s, _, _, _ := fixture()
	events := &countingEvents{memEvents: s.eventsRepository.(memEvents)}
	s.eventsRepository = events

	report, err := s.Diagnose(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(events.calls) != 1 {
		t.Fatalf("loaded events %d times, want 1", len(events.calls))
	}
	want := []string{"event_1_ab", "event_1_ab", "event_9_zz_2025-01-16"}
	if got := events.calls[0]; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if len(report.Orphaned) != 1 || len(report.Stale) != 1 {
		t.Errorf("orphaned = %d, stale = %d, want 1 and 1", len(report.Orphaned), len(report.Stale))
	}
}

func TestRunRepairs(t *testing.T) {
	s, shares, rf, db := fixture()

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	if len(shares.deleted) != 1 || shares.deleted[0] != 3 {
		t.Errorf("deleted = %v, want [3]", shares.deleted)
	}
	if len(shares.updated) != 1 || shares.updated[0] != "event_1_ab" {
		t.Errorf("updated = %v", shares.updated)
	}
	if db.Committed != 1 {
		t.Errorf("committed = %d, want 1", db.Committed)
	}
	if rf.users["bob"] != 1 || rf.users["carol"] != 1 || rf.users["dave"] != 0 {
		t.Errorf("refreshed = %v", rf.users)
	}
}

func TestRunWithoutRepair(t *testing.T) {
	s, shares, _, db := fixture()

	if _, err := s.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if len(shares.deleted) != 0 || len(shares.updated) != 0 || db.Begun != 0 {
		t.Errorf("repair ran: deleted %v, updated %v", shares.deleted, shares.updated)
	}
}

func TestSchedule(t *testing.T) {
	s, _, _, _ := fixture()
	c := cron.New()

	if err := s.Schedule(c, "@every 1h", false); err != nil {
		t.Fatal(err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}
	if err := s.Schedule(c, "not a schedule", false); err == nil {
		t.Error("bad schedule accepted")
	}
}
