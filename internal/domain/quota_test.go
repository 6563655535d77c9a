package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCheckQuotaRejectsAtLimit(t *testing.T) {
	rec := QuotaRecord{Date: "2025-03-01", Count: 5}
	got, err := CheckQuota(rec, "2025-03-01", DailyGenerationLimit)
	var exceeded *QuotaExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if got != rec {
		t.Fatalf("record changed on rejection: %+v", got)
	}
}

func TestCheckQuotaResetsOnNewDay(t *testing.T) {
	rec := QuotaRecord{Date: "2025-03-01", Count: 5}
	got, err := CheckQuota(rec, "2025-03-02", DailyGenerationLimit)
	if err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if got.Date != "2025-03-02" || got.Count != 0 {
		t.Fatalf("CheckQuota() = %+v, want reset record", got)
	}
	got = RecordGeneration(got, "2025-03-02")
	if got.Count != 1 {
		t.Fatalf("count after completion = %d, want 1", got.Count)
	}
}

func TestRecordGeneration(t *testing.T) {
	tests := []struct {
		name  string
		rec   QuotaRecord
		today string
		want  QuotaRecord
	}{
		{"first use", QuotaRecord{}, "2025-03-01", QuotaRecord{Date: "2025-03-01", Count: 1}},
		{"same day", QuotaRecord{Date: "2025-03-01", Count: 2}, "2025-03-01", QuotaRecord{Date: "2025-03-01", Count: 3}},
		{"stale day", QuotaRecord{Date: "2025-02-28", Count: 4}, "2025-03-01", QuotaRecord{Date: "2025-03-01", Count: 1}},
		{"negative count", QuotaRecord{Date: "2025-03-01", Count: -3}, "2025-03-01", QuotaRecord{Date: "2025-03-01", Count: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RecordGeneration(tc.rec, tc.today); got != tc.want {
				t.Fatalf("RecordGeneration() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestQuotaRemaining(t *testing.T) {
	rec := QuotaRecord{Date: "2025-03-01", Count: 3}
	if got := rec.Remaining("2025-03-01", 5); got != 2 {
		t.Fatalf("Remaining same day = %d, want 2", got)
	}
	if got := rec.Remaining("2025-03-02", 5); got != 5 {
		t.Fatalf("Remaining next day = %d, want 5", got)
	}
	over := QuotaRecord{Date: "2025-03-01", Count: 9}
	if got := over.Remaining("2025-03-01", 5); got != 0 {
		t.Fatalf("Remaining over limit = %d, want 0", got)
	}
}

func TestQuotaDay(t *testing.T) {
	ts := time.Date(2025, time.January, 7, 23, 59, 0, 0, time.UTC)
	if got := QuotaDay(ts); got != "2025-01-07" {
		t.Fatalf("QuotaDay() = %q", got)
	}
}
