package records

import (
	"time"

	"github.com/google/uuid"
)

// SampleRecords returns the demo records loaded on first start
func SampleRecords() []Record {
	return []Record{
		{
			ID:          uuid.New(),
			FirstName:   "Jan",
			LastName:    "Kowalski",
			NationalID:  "92071234567",
			Email:       "jan.kowalski@example.com",
			Address:     "ul. Kwiatowa 15/3",
			City:        "Warsaw",
			PostalCode:  "00-001",
			Phone:       "+48 123 456 789",
			DateOfBirth: time.Date(1992, time.July, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          uuid.New(),
			FirstName:   "Anna",
			LastName:    "Nowak",
			NationalID:  "85032198765",
			Email:       "anna.nowak@example.com",
			Address:     "ul. Słoneczna 42",
			City:        "Krakow",
			PostalCode:  "30-001",
			Phone:       "+48 987 654 321",
			DateOfBirth: time.Date(1985, time.March, 21, 0, 0, 0, 0, time.UTC),
		},
	}
}
