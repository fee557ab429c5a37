package types

import (
	"strings"
	"time"
)

// Person is a member of the kinship graph. Identity and authentication live
// outside this system; the graph engine references people by ID only and
// treats the rest as profile data.
type Person struct {
	// ID is the unique identifier (format: person:uuid).
	ID string `json:"id"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Gender    string `json:"gender,omitempty"`
	Bio       string `json:"bio,omitempty"`

	// Birthday and DateDied bound the person's lifetime. DateDied set to a
	// past date marks the person deceased.
	Birthday *time.Time `json:"birthday,omitempty"`
	DateDied *time.Time `json:"date_died,omitempty"`

	CityBorn     string `json:"city_born,omitempty"`
	StateBorn    string `json:"state_born,omitempty"`
	CityCurrent  string `json:"city_current,omitempty"`
	StateCurrent string `json:"state_current,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name, trimming when either is missing.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayName returns the full name, falling back to the email address when
// no name is set.
func (p *Person) DisplayName() string {
	if name := p.FullName(); name != "" {
		return name
	}
	return p.Email
}

// Deceased reports whether the person has a death date on or before now.
func (p *Person) Deceased(now time.Time) bool {
	return p.DateDied != nil && !p.DateDied.After(now)
}

// Age returns the person's current age, or age at death for deceased people.
// Returns -1 when no birthday is recorded.
func (p *Person) Age(now time.Time) int {
	if p.Birthday == nil {
		return -1
	}

	end := now
	if p.Deceased(now) {
		end = *p.DateDied
	}

	age := end.Year() - p.Birthday.Year()
	// Birthday not yet reached this year.
	if end.YearDay() < p.Birthday.YearDay() {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}
