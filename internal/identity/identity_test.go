package identity

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		want ID
	}{
		{"abc123", ID{Kind: KindSingle, BaseID: "abc123"}},
		{"event_1234567890_abc123", ID{Kind: KindSingle, BaseID: "event_1234567890_abc123"}},
		{"event_1234567890_abc123_2025-01-15", ID{Kind: KindInstance, BaseID: "event_1234567890_abc123", DateKey: "2025-01-15"}},
		{"event_123_2025-01-20", ID{Kind: KindInstance, BaseID: "event_123", DateKey: "2025-01-20"}},
		{"abc123_2025-01-15", ID{Kind: KindInstance, BaseID: "abc123", DateKey: "2025-01-15"}},
		{"2025-01-15", ID{Kind: KindSingle, BaseID: "2025-01-15"}},
		{"abc_2025-1-15", ID{Kind: KindSingle, BaseID: "abc_2025-1-15"}},
		{"abc_2025-01-15x", ID{Kind: KindSingle, BaseID: "abc_2025-01-15x"}},
		{"abc_", ID{Kind: KindSingle, BaseID: "abc_"}},
		// loose pattern: month and day are not range checked
		{"abc_2025-13-45", ID{Kind: KindInstance, BaseID: "abc", DateKey: "2025-13-45"}},
		{"__2025-01-15", ID{Kind: KindInstance, BaseID: "_", DateKey: "2025-01-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Classify(tt.id)
			if err != nil {
				t.Fatalf("Classify(%q) unexpected error: %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestClassifyInvalid(t *testing.T) {
	for _, id := range []string{"", "_2025-01-15"} {
		if _, err := Classify(id); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("Classify(%q) error = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestClassifyPlainIDs(t *testing.T) {
	for _, id := range []string{"a", "abc123", "550e8400-e29b-41d4-a716-446655440000", "2025-01-15"} {
		got, err := Classify(id)
		if err != nil {
			t.Fatalf("Classify(%q): %v", id, err)
		}
		if got.Kind != KindSingle || got.BaseID != id || got.DateKey != "" {
			t.Errorf("Classify(%q) = %+v, want single with same base", id, got)
		}
	}
}

func TestSiblingPredicate(t *testing.T) {
	match, err := SiblingPredicate("event_123")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"event_123", true},
		{"event_123_2025-01-20", true},
		{"event_123_anything", true},
		{"event_1234", false},
		{"event_123XYZ", false},
		{"other_event_123", false},
		{"event_12", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := match(tt.id); got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSiblingPredicateEmptyBase(t *testing.T) {
	if _, err := SiblingPredicate(""); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("error = %v, want ErrInvalidIdentifier", err)
	}
}

func TestSiblingPattern(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"abc123", `abc123\_%`},
		{"event_123", `event\_123\_%`},
		{"50%off", `50\%off\_%`},
		{`back\slash`, `back\\slash\_%`},
	}

	for _, tt := range tests {
		got, err := SiblingPattern(tt.base)
		if err != nil {
			t.Fatalf("SiblingPattern(%q): %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("SiblingPattern(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}

	if _, err := SiblingPattern(""); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("empty base error = %v, want ErrInvalidIdentifier", err)
	}
}

func TestDeriveInstance(t *testing.T) {
	date := time.Date(2025, time.January, 20, 15, 4, 5, 0, time.UTC)

	got, err := DeriveInstance("event_123", date)
	if err != nil {
		t.Fatal(err)
	}
	if want := "event_123_2025-01-20"; got != want {
		t.Errorf("DeriveInstance = %q, want %q", got, want)
	}
}

func TestDeriveInstanceErrors(t *testing.T) {
	if _, err := DeriveInstance("", time.Now()); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("empty base error = %v, want ErrInvalidIdentifier", err)
	}
	if _, err := DeriveInstance("abc", time.Time{}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("zero date error = %v, want ErrInvalidDate", err)
	}
	if _, err := DeriveInstance("abc", time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("year 10000 error = %v, want ErrInvalidDate", err)
	}
}

func TestDeriveClassifyRoundTrip(t *testing.T) {
	bases := []string{"abc123", "event_123", "event_1234567890_abc123", "a_b_c", "x-y"}
	start := time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC)

	for _, base := range bases {
		for i := 0; i < 5; i++ {
			date := start.AddDate(0, 0, i)

			id, err := DeriveInstance(base, date)
			if err != nil {
				t.Fatalf("DeriveInstance(%q, %v): %v", base, date, err)
			}

			got, err := Classify(id)
			if err != nil {
				t.Fatalf("Classify(%q): %v", id, err)
			}

			want := ID{Kind: KindInstance, BaseID: base, DateKey: FormatDateKey(date)}
			if got != want {
				t.Errorf("Classify(%q) = %+v, want %+v", id, got, want)
			}
		}
	}
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2024-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDateKey = %v", got)
	}

	for _, key := range []string{"", "2025-13-01", "2025-02-30", "2025-1-01", "20250101"} {
		if _, err := ParseDateKey(key); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDateKey(%q) error = %v, want ErrInvalidDate", key, err)
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			base := fmt.Sprintf("event_%d", i)
			id, err := DeriveInstance(base, time.Date(2025, 1, 1+i%28, 0, 0, 0, 0, time.UTC))
			if err != nil {
				t.Error(err)
				return
			}
			got, err := Classify(id)
			if err != nil || got.BaseID != base {
				t.Errorf("Classify(%q) = %+v, %v", id, got, err)
			}
		}(i)
	}
	wg.Wait()
}
