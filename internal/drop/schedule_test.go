package drop

import (
	"context"
	"testing"
	"time"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestSchedule_CurrentAndNext(t *testing.T) {
	h := time.Hour
	drops := []models.Drop{
		{ID: "later", StartsAt: testNow.Add(48 * h), EndsAt: testNow.Add(72 * h), IsActive: true},
		{ID: "open", StartsAt: testNow.Add(-h), EndsAt: testNow.Add(h), IsActive: true},
		{ID: "soon-disabled", StartsAt: testNow.Add(2 * h), EndsAt: testNow.Add(3 * h), IsActive: false},
		{ID: "past", StartsAt: testNow.Add(-10 * h), EndsAt: testNow.Add(-5 * h), IsActive: true},
	}
	s := NewSchedule(drops)

	tests := []struct {
		name        string
		at          time.Time
		wantCurrent string
		wantNext    string
	}{
		{name: "inside open drop", at: testNow, wantCurrent: "open", wantNext: "later"},
		{name: "start is inclusive", at: testNow.Add(-h), wantCurrent: "open", wantNext: "later"},
		{name: "end is exclusive", at: testNow.Add(h), wantCurrent: "", wantNext: "later"},
		{name: "after everything", at: testNow.Add(100 * h), wantCurrent: "", wantNext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idOf(s.Current(tt.at)); got != tt.wantCurrent {
				t.Errorf("Current() = %q, want %q", got, tt.wantCurrent)
			}
			if got := idOf(s.Next(tt.at)); got != tt.wantNext {
				t.Errorf("Next() = %q, want %q", got, tt.wantNext)
			}
		})
	}
}

func idOf(d *models.Drop) string {
	if d == nil {
		return ""
	}
	return d.ID
}

func TestService_Status(t *testing.T) {
	repos := repository.NewInMemory(true, testNow)
	svc := NewService(repos.Drops)
	svc.now = func() time.Time { return testNow }

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() unexpected error: %v", err)
	}
	if !st.Open || st.Drop.ID != "autumn" || st.Next.ID != "winter" {
		t.Errorf("Status() = %+v, want autumn open and winter next", st)
	}

	svc.now = func() time.Time { return testNow.Add(10 * 24 * time.Hour) }
	open, err := svc.IsOpen(context.Background())
	if err != nil || open {
		t.Errorf("IsOpen() between drops = %v, %v; want false", open, err)
	}
}
