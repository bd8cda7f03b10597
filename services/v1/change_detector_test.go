package v1

import (
	"context"
	"testing"
	"time"

	"statuspulse/models"
)

func TestClassify(t *testing.T) {
	up := models.StatusCheck{IsUp: true, Level: models.Operational}
	down := models.StatusCheck{IsUp: false, Level: models.MajorOutage}
	degraded := models.StatusCheck{IsUp: true, Level: models.Degraded}

	tests := []struct {
		name   string
		checks []models.StatusCheck
		want   Transition
	}{
		{"no history", nil, NoChange},
		{"single check", []models.StatusCheck{down}, NoChange},
		{"up to down", []models.StatusCheck{down, up}, Degrade},
		{"down to up", []models.StatusCheck{up, down}, Recover},
		{"up to up", []models.StatusCheck{up, up}, NoChange},
		{"down to down", []models.StatusCheck{down, down}, NoChange},
		{"operational to degraded is still up", []models.StatusCheck{degraded, up}, NoChange},
		{"only the two newest count", []models.StatusCheck{up, up, down}, NoChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.checks).Transition; got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChangeDetector_ReadsNewestFirst(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.seedCheck(1, true, models.Operational, now.Add(-4*time.Minute))
	store.seedCheck(1, false, models.PartialOutage, now)
	store.seedCheck(1, true, models.Operational, now.Add(-2*time.Minute))

	change, err := NewChangeDetector(store).Detect(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if change.Transition != Degrade {
		t.Fatalf("expected degrade, got %s", change.Transition)
	}
	if change.Current.Level != models.PartialOutage {
		t.Errorf("current should be the newest check, got %s", change.Current.Level)
	}
}
