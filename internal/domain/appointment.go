package domain

import (
	"strings"
	"time"
)

// InstantLayout is the wire format for a bookable instant, minute precision.
const InstantLayout = "2006-01-02 15:04"

// DateLayout is the canonical calendar-date format (ISO).
const DateLayout = "2006-01-02"

// Regions is the fixed set of regions appointments can be booked in.
var Regions = []string{
	"São Paulo",
	"Osasco",
	"Porto Alegre",
	"Rio de Janeiro",
	"Belo Horizonte",
}

// SuggestedExamTypes is advisory only; exam type input is accepted verbatim.
var SuggestedExamTypes = []string{
	"Consulta Clínica",
	"Exame de Sangue",
	"Raio-X",
	"Ultrassom",
	"Ressonância Magnética",
}

// MatchRegion finds the first region whose name is contained in the input,
// case-insensitively. Returns the canonical region name.
func MatchRegion(input string) (string, bool) {
	folded := strings.ToLower(input)
	for _, region := range Regions {
		if strings.Contains(folded, strings.ToLower(region)) {
			return region, true
		}
	}
	return "", false
}

type Appointment struct {
	ID          int64     `json:"id"`
	ClientName  string    `json:"client_name"`
	Region      string    `json:"region"`
	ExamType    string    `json:"exam_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type AppointmentReq struct {
	ClientName  string `json:"client_name"`
	Region      string `json:"region"`
	ExamType    string `json:"exam_type"`
	ScheduledAt string `json:"scheduled_at"` // InstantLayout
}

// Availability is the result of a slot query for one region and date.
// Slots are InstantLayout strings in chronological order. Message carries a
// human-readable reason when the list is empty.
type Availability struct {
	Slots   []string `json:"available"`
	Message string   `json:"message,omitempty"`
}
