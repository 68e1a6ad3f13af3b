package shares

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/database/dbtest"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/jackc/pgconn"
)

func TestDeleteBySeries(t *testing.T) {
	db := &dbtest.Recorder{
		OnExec: func(q dbtest.Query) (pgconn.CommandTag, error) {
			return pgconn.CommandTag("DELETE 2"), nil
		},
	}

	n, err := NewRepository().DeleteBySeries(context.Background(), db, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	q := db.Last()
	if want := "DELETE FROM shared_events WHERE (event_id = $1 OR event_id LIKE $2)"; q.SQL != want {
		t.Errorf("sql = %q, want %q", q.SQL, want)
	}
	if want := []interface{}{"abc123", `abc123\_%`}; !reflect.DeepEqual(q.Args, want) {
		t.Errorf("args = %v, want %v", q.Args, want)
	}
}

func TestUpdateStatusGuardsSourceStatus(t *testing.T) {
	db := &dbtest.Recorder{
		OnExec: func(q dbtest.Query) (pgconn.CommandTag, error) {
			return pgconn.CommandTag("UPDATE 0"), nil
		},
	}

	ok, err := NewRepository().UpdateStatus(context.Background(), db, 7, model.ShareStatusPending, model.ShareStatusAccepted)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("update reported success on zero rows")
	}

	q := db.Last()
	if want := "UPDATE shared_events SET status = $1, updated_at = now() WHERE id = $2 AND status = $3"; q.SQL != want {
		t.Errorf("sql = %q, want %q", q.SQL, want)
	}
	if want := []interface{}{"accepted", int64(7), "pending"}; !reflect.DeepEqual(q.Args, want) {
		t.Errorf("args = %v, want %v", q.Args, want)
	}
}

func TestGetSharesMapsSnapshot(t *testing.T) {
	db := &dbtest.Recorder{
		OnSelect: func(dst interface{}, q dbtest.Query) error {
			*dst.(*[]*shareDTO) = []*shareDTO{{
				ID:          1,
				EventID:     "abc",
				SenderID:    "s",
				RecipientID: "r",
				Status:      "pending",
				EventData:   []byte(`{"title":"lunch","date":"2025-01-15T00:00:00Z","end_date":"2025-01-15T00:00:00Z","all_day":true}`),
			}}
			return nil
		},
	}

	shares, err := NewRepository().GetShares(context.Background(), db, model.SharesFilter{
		RecipientID: "r",
		Statuses:    []model.ShareStatus{model.ShareStatusPending},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(shares) != 1 {
		t.Fatalf("got %d shares, want 1", len(shares))
	}
	s := shares[0]
	if s.EventData.Title != "lunch" || !s.EventData.AllDay || !s.EventData.Date.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("snapshot = %+v", s.EventData)
	}

	if want := "SELECT id, event_id, sender_id, recipient_id, status, event_data, created_at, updated_at FROM shared_events WHERE recipient_id = $1 AND status IN ($2) ORDER BY created_at DESC, id DESC"; db.Last().SQL != want {
		t.Errorf("sql = %q, want %q", db.Last().SQL, want)
	}
}

func TestGetShareNoRows(t *testing.T) {
	if _, err := NewRepository().GetShare(context.Background(), &dbtest.Recorder{}, 1); !errors.Is(err, model.ErrNoRecord) {
		t.Fatalf("error = %v, want ErrNoRecord", err)
	}
}
