package domain

import "time"

const (
	// DailyGenerationLimit is the soft per-day cap enforced by the client.
	DailyGenerationLimit = 5
	// QuotaDateLayout formats the calendar day key of a QuotaRecord.
	QuotaDateLayout = "2006-01-02"
)

// QuotaRecord counts completed generations for one calendar day. It lives in
// client-controlled storage and can be reset by the user at will, so it is a
// courtesy limit and not an enforcement boundary.
type QuotaRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// QuotaDay returns the day key for t in t's own location.
func QuotaDay(t time.Time) string {
	return t.Format(QuotaDateLayout)
}

// CheckQuota rolls rec over to today and rejects the attempt once limit
// generations were recorded for today. The returned record is the one to
// persist, whether or not the attempt is allowed.
func CheckQuota(rec QuotaRecord, today string, limit int) (QuotaRecord, error) {
	rec = rollover(rec, today)
	if rec.Count >= limit {
		return rec, &QuotaExceededError{Limit: limit}
	}
	return rec, nil
}

// RecordGeneration counts one successful generation for today.
func RecordGeneration(rec QuotaRecord, today string) QuotaRecord {
	rec = rollover(rec, today)
	rec.Count++
	return rec
}

// Remaining returns how many generations are left today.
func (r QuotaRecord) Remaining(today string, limit int) int {
	left := limit - rollover(r, today).Count
	if left < 0 {
		return 0
	}
	return left
}

func rollover(rec QuotaRecord, today string) QuotaRecord {
	if rec.Date != today {
		return QuotaRecord{Date: today}
	}
	if rec.Count < 0 {
		rec.Count = 0
	}
	return rec
}
