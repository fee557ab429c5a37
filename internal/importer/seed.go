// Package importer loads a family seed file (people plus declared
// relationships) into the store. Relationships go through the normal kinship
// write pipeline, so mirroring, approval, and inference behave exactly as
// they would for interactive edits.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// SeedFile is the YAML document format.
//
// People carry a file-local ref that relationships use to name each other;
// the importer assigns real person IDs on insert.
type SeedFile struct {
	People        []SeedPerson       `yaml:"people"`
	Relationships []SeedRelationship `yaml:"relationships"`
}

// SeedPerson is one person entry in a seed file.
type SeedPerson struct {
	Ref       string `yaml:"ref"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Gender    string `yaml:"gender"`
	Bio       string `yaml:"bio"`

	// Dates use YYYY-MM-DD.
	Birthday string `yaml:"birthday"`
	DateDied string `yaml:"date_died"`

	CityBorn     string `yaml:"city_born"`
	StateBorn    string `yaml:"state_born"`
	CityCurrent  string `yaml:"city_current"`
	StateCurrent string `yaml:"state_current"`
}

// SeedRelationship is one declared relationship. Subject and Object name
// people by ref. Approved seeds run the full approval step after creation,
// acting as the object.
type SeedRelationship struct {
	Subject   string `yaml:"subject"`
	Object    string `yaml:"object"`
	Type      string `yaml:"type"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Notes     string `yaml:"notes"`
	Approved  bool   `yaml:"approved"`
}

// Result summarizes an import run.
type Result struct {
	PeopleCreated int
	EdgesCreated  int
	EdgesApproved int
	Skipped       int
}

// Importer loads seed files through the person store and kinship service.
type Importer struct {
	people storage.PersonStore
	svc    *kinship.Service
}

// New creates an importer.
func New(people storage.PersonStore, svc *kinship.Service) *Importer {
	return &Importer{people: people, svc: svc}
}

// Run parses and loads one seed file. People are inserted first; every
// relationship is then created through the kinship service so derived edges
// materialize as they would interactively. A duplicate relationship is
// counted as skipped, not failed.
func (i *Importer) Run(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: read seed: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("importer: parse seed: %w", err)
	}

	result := &Result{}

	refs := make(map[string]string, len(seed.People))
	for idx := range seed.People {
		sp := &seed.People[idx]
		if sp.Ref == "" {
			return nil, fmt.Errorf("importer: person %d has no ref", idx)
		}
		if _, dup := refs[sp.Ref]; dup {
			return nil, fmt.Errorf("importer: duplicate person ref %q", sp.Ref)
		}

		person, err := seedPerson(sp)
		if err != nil {
			return nil, fmt.Errorf("importer: person %q: %w", sp.Ref, err)
		}
		if err := i.people.StorePerson(ctx, person); err != nil {
			return nil, fmt.Errorf("importer: store person %q: %w", sp.Ref, err)
		}
		refs[sp.Ref] = person.ID
		result.PeopleCreated++
	}

	for idx := range seed.Relationships {
		sr := &seed.Relationships[idx]

		subjectID, ok := refs[sr.Subject]
		if !ok {
			return nil, fmt.Errorf("importer: relationship %d: unknown subject ref %q", idx, sr.Subject)
		}
		objectID, ok := refs[sr.Object]
		if !ok {
			return nil, fmt.Errorf("importer: relationship %d: unknown object ref %q", idx, sr.Object)
		}

		startDate, err := seedDate(sr.StartDate)
		if err != nil {
			return nil, fmt.Errorf("importer: relationship %d: %w", idx, err)
		}
		endDate, err := seedDate(sr.EndDate)
		if err != nil {
			return nil, fmt.Errorf("importer: relationship %d: %w", idx, err)
		}

		edge, err := i.svc.CreateEdge(ctx, kinship.CreateEdgeRequest{
			SubjectID: subjectID,
			ObjectID:  objectID,
			Type:      types.RelationType(sr.Type),
			StartDate: startDate,
			EndDate:   endDate,
			Notes:     sr.Notes,
		})
		if err != nil {
			// Inference from an earlier seed line may have created the edge
			// already; that is expected in realistic seed files.
			if errors.Is(err, kinship.ErrDuplicateEdge) {
				log.Printf("importer: relationship (%s, %s, %s) already exists, skipping", sr.Subject, sr.Object, sr.Type)
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("importer: create relationship (%s, %s, %s): %w", sr.Subject, sr.Object, sr.Type, err)
		}
		result.EdgesCreated++

		if sr.Approved {
			if err := i.svc.Approve(ctx, edge.ID, objectID); err != nil {
				return nil, fmt.Errorf("importer: approve relationship (%s, %s, %s): %w", sr.Subject, sr.Object, sr.Type, err)
			}
			result.EdgesApproved++
		}
	}

	return result, nil
}

func seedPerson(sp *SeedPerson) (*types.Person, error) {
	birthday, err := seedDate(sp.Birthday)
	if err != nil {
		return nil, err
	}
	dateDied, err := seedDate(sp.DateDied)
	if err != nil {
		return nil, err
	}

	return &types.Person{
		ID:           "person:" + uuid.NewString(),
		FirstName:    sp.FirstName,
		LastName:     sp.LastName,
		Email:        sp.Email,
		Gender:       sp.Gender,
		Bio:          sp.Bio,
		Birthday:     birthday,
		DateDied:     dateDied,
		CityBorn:     sp.CityBorn,
		StateBorn:    sp.StateBorn,
		CityCurrent:  sp.CityCurrent,
		StateCurrent: sp.StateCurrent,
	}, nil
}

func seedDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}
