// Package records holds the pure helpers around medical records and
// appointments: linking a record to an appointment, composing record
// descriptions and grouping appointments for display.
package records

import (
	"time"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

// MaxLinkageCandidates is how many of a patient's most recent records are
// considered when linking a record to an appointment.
const MaxLinkageCandidates = 20

var recordDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// ParseRecordDate accepts plain dates as well as the timestamp renderings
// some drivers return for date columns.
func ParseRecordDate(value string) (time.Time, bool) {
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NearestRecord returns the record whose record_date is closest to ref.
// Ties go to the first record encountered, so with input ordered by
// record_date descending the more recent record wins. Records with an
// unparseable date are skipped. It returns nil when nothing qualifies.
func NearestRecord(recs []models.MedicalRecord, ref time.Time) *models.MedicalRecord {
	var (
		best     *models.MedicalRecord
		bestDist time.Duration
	)
	for i := range recs {
		date, ok := ParseRecordDate(recs[i].RecordDate)
		if !ok {
			continue
		}
		dist := absDuration(ref.Sub(date))
		if best == nil || dist < bestDist {
			best = &recs[i]
			bestDist = dist
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
