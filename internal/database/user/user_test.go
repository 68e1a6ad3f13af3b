package user

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/SergeyKozhin/calnotes-backend/internal/database/dbtest"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

func TestGetProfileByEmail(t *testing.T) {
	token := "push-token"
	db := &dbtest.Recorder{
		OnSelect: func(dst interface{}, q dbtest.Query) error {
			*dst.(*[]*profileDTO) = []*profileDTO{{ID: "u1", Email: "a@b.c", PushToken: &token, Notify: true}}
			return nil
		},
	}

	p, err := NewRepository().GetProfileByEmail(context.Background(), db, "A@B.c")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "u1" || p.PushToken != token {
		t.Errorf("profile = %+v", p)
	}

	q := db.Last()
	if want := "SELECT id, full_name, email, push_token, notify FROM profiles WHERE lower(email) = $1"; q.SQL != want {
		t.Errorf("sql = %q, want %q", q.SQL, want)
	}
	if want := []interface{}{"a@b.c"}; !reflect.DeepEqual(q.Args, want) {
		t.Errorf("args = %v, want %v", q.Args, want)
	}
}

func TestGetProfileByIDMissing(t *testing.T) {
	if _, err := NewRepository().GetProfileByID(context.Background(), &dbtest.Recorder{}, "nobody"); !errors.Is(err, model.ErrNoRecord) {
		t.Fatalf("error = %v, want ErrNoRecord", err)
	}
}

func TestUpdatePushTokenClears(t *testing.T) {
	db := &dbtest.Recorder{}

	if err := NewRepository().UpdatePushToken(context.Background(), db, "u1", ""); err != nil {
		t.Fatal(err)
	}

	if want := []interface{}{nil, "u1"}; !reflect.DeepEqual(db.Last().Args, want) {
		t.Errorf("args = %v, want %v", db.Last().Args, want)
	}
}
