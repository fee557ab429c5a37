package types

import (
	"testing"
	"time"
)

func TestPersonDisplayName(t *testing.T) {
	p := Person{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	if got := p.DisplayName(); got != "Jane Doe" {
		t.Errorf("DisplayName = %q, want %q", got, "Jane Doe")
	}

	p = Person{FirstName: "Jane", Email: "jane@example.com"}
	if got := p.DisplayName(); got != "Jane" {
		t.Errorf("DisplayName = %q, want %q", got, "Jane")
	}

	p = Person{Email: "jane@example.com"}
	if got := p.DisplayName(); got != "jane@example.com" {
		t.Errorf("DisplayName = %q, want email fallback", got)
	}
}

func TestPersonAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	birthday := time.Date(1990, 6, 14, 0, 0, 0, 0, time.UTC)
	p := Person{Birthday: &birthday}
	if got := p.Age(now); got != 35 {
		t.Errorf("Age = %d, want 35", got)
	}

	// Birthday not yet reached this year.
	birthday = time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := p.Age(now); got != 34 {
		t.Errorf("Age before birthday = %d, want 34", got)
	}

	// No birthday recorded.
	p = Person{}
	if got := p.Age(now); got != -1 {
		t.Errorf("Age with no birthday = %d, want -1", got)
	}
}

func TestPersonAgeAtDeath(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	birthday := time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC)
	died := time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC)

	p := Person{Birthday: &birthday, DateDied: &died}
	if !p.Deceased(now) {
		t.Fatal("person should be deceased")
	}
	if got := p.Age(now); got != 80 {
		t.Errorf("age at death = %d, want 80", got)
	}
}
