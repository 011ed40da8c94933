// Package seed provides the initial set of activities the directory starts with.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aidar/activity-signup/internal/domain"
)

// File is the on-disk layout of a seed file.
type File struct {
	Activities []domain.Activity `yaml:"activities"`
}

// Default returns the built-in activities. Every call returns fresh copies.
func Default() []domain.Activity {
	return []domain.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Soccer Team",
			Description:     "Join the school soccer team and compete in matches",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
		},
		{
			Name:            "Basketball Team",
			Description:     "Practice and play basketball with the school team",
			Schedule:        "Wednesdays and Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore your creativity through painting and drawing",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"amelia@mergington.edu"},
		},
		{
			Name:            "Drama Club",
			Description:     "Act, direct, and produce plays and performances",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"ella@mergington.edu", "scarlett@mergington.edu"},
		},
		{
			Name:            "Math Club",
			Description:     "Solve challenging problems and participate in math competitions",
			Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 10,
			Participants:    []string{"james@mergington.edu"},
		},
		{
			Name:            "Debate Team",
			Description:     "Develop public speaking and argumentation skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 12,
			Participants:    []string{"charlotte@mergington.edu", "henry@mergington.edu"},
		},
	}
}

// LoadFile reads activities from a YAML seed file.
func LoadFile(path string) ([]domain.Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	if err := Validate(f.Activities); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return f.Activities, nil
}

// Load returns the activities from path, or Default when path is empty.
func Load(path string) ([]domain.Activity, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate checks that names are present and unique and that no activity
// lists the same participant twice.
func Validate(activities []domain.Activity) error {
	names := make(map[string]struct{}, len(activities))
	for i, a := range activities {
		if a.Name == "" {
			return fmt.Errorf("activity #%d has no name", i)
		}
		if _, ok := names[a.Name]; ok {
			return fmt.Errorf("duplicate activity %q", a.Name)
		}
		names[a.Name] = struct{}{}

		seen := make(map[string]struct{}, len(a.Participants))
		for _, p := range a.Participants {
			if _, ok := seen[p]; ok {
				return fmt.Errorf("activity %q lists %s twice", a.Name, p)
			}
			seen[p] = struct{}{}
		}
	}
	return nil
}
