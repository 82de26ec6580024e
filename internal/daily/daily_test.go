package daily

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/jeopardy/migrations"
)

var pool = []int{2, 3, 4, 6, 8, 9, 10, 11, 12, 13, 14, 15, 17, 18}

func TestDateKeyUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc)
	if got := DateKey(ts); got != "2026-03-01" {
		t.Fatalf("expected UTC date 2026-03-01, got %s", got)
	}
}

func TestPickerDeterministicPerDate(t *testing.T) {
	day := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a, err := Picker(day, "salt", pool)(6)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Picker(day.Add(10*time.Hour), "salt", pool)(6)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same date gave different picks: %v vs %v", a, b)
	}
	again, _ := Picker(day, "salt", pool)(6)
	if !reflect.DeepEqual(a, again) {
		t.Fatalf("repeat call gave different picks: %v vs %v", a, again)
	}

	seen := map[int]bool{}
	for _, id := range a {
		if seen[id] {
			t.Fatalf("duplicate id in %v", a)
		}
		seen[id] = true
	}

	differs := false
	for d := 1; d <= 7 && !differs; d++ {
		other, _ := Picker(day.AddDate(0, 0, d), "salt", pool)(6)
		differs = !reflect.DeepEqual(a, other)
	}
	if !differs {
		t.Fatal("expected picks to change across a week of dates")
	}
}

func TestStoreResultsAndLeaderboard(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatal(err)
	}

	s := NewStore(db)
	ctx := context.Background()
	date := "2026-10-18"

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.InsertResult(ctx, Result{GameID: "g1", PlayerID: "slow", Date: date, Reveals: 60, ElapsedMs: 9000}))
	must(s.InsertResult(ctx, Result{GameID: "g2", PlayerID: "fast", Date: date, Reveals: 60, ElapsedMs: 4000}))
	must(s.InsertResult(ctx, Result{GameID: "g3", PlayerID: "fast", Date: date, Reveals: 60, ElapsedMs: 1000})) // ignored
	must(s.InsertResult(ctx, Result{GameID: "g4", PlayerID: "other", Date: "2026-10-17", Reveals: 60, ElapsedMs: 10}))

	played, err := s.AlreadyPlayed(ctx, "fast", date)
	must(err)
	if !played {
		t.Fatal("expected fast to have played")
	}
	played, err = s.AlreadyPlayed(ctx, "nobody", date)
	must(err)
	if played {
		t.Fatal("expected nobody not to have played")
	}

	rows, err := s.Leaderboard(ctx, date, 0)
	must(err)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].PlayerID != "fast" || rows[0].ElapsedMs != 4000 || rows[1].PlayerID != "slow" {
		t.Fatalf("unexpected leaderboard %+v", rows)
	}
}
