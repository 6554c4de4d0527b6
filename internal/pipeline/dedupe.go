package pipeline

import (
	"strconv"
	"strings"
	"time"

	"engagement-dashboard/internal/model"
)

// dedupeRecords keeps the first occurrence of every distinct record.
// Equality covers every source column after coercion; derived columns
// are functions of those and are left out.
func dedupeRecords(rows []model.Record) []model.Record {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		key := recordKey(&r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

const keySep = '\x1f'

func recordKey(r *model.Record) string {
	var b strings.Builder
	for _, s := range []string{r.Gender, r.Profession, r.Location, r.Platform, r.DeviceType, r.ConnectionType} {
		b.WriteString(s)
		b.WriteByte(keySep)
	}
	b.WriteString(strconv.Itoa(r.Age))
	b.WriteByte(keySep)
	writeFloat(&b, r.TotalTimeSpent, true)
	writeFloat(&b, r.Engagement, true)
	writeFloat(&b, r.TimeSpentOnVideo.Value, r.TimeSpentOnVideo.Valid)
	writeFloat(&b, r.SelfControl.Value, r.SelfControl.Valid)
	writeFloat(&b, r.AddictionLevel.Value, r.AddictionLevel.Valid)
	if r.Date.Valid {
		b.WriteString(r.Date.Time.Format(time.RFC3339Nano))
	}
	return b.String()
}

func writeFloat(b *strings.Builder, f float64, valid bool) {
	if valid {
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	} else {
		b.WriteString("NA")
	}
	b.WriteByte(keySep)
}
