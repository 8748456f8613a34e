package records

import (
	"time"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

// GroupAppointmentsByDate buckets appointments by calendar day in loc,
// keeping days and appointments in input order.
func GroupAppointmentsByDate(appts []models.Appointment, loc *time.Location) []models.AppointmentDay {
	if loc == nil {
		loc = time.UTC
	}

	days := []models.AppointmentDay{}
	index := make(map[string]int)
	for _, a := range appts {
		key := a.AppointmentDate.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, models.AppointmentDay{Date: key})
		}
		days[i].Appointments = append(days[i].Appointments, a)
	}
	return days
}
