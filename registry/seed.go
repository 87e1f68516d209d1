package registry

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed returns the built-in activities offered at Mergington High School.
// Each call returns a fresh map.
func Seed() map[string]Activity {
	return map[string]Activity{
		"Basketball": {
			Description:     "Team basketball practices and games",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"james@mergington.edu"},
		},
		"Tennis Club": {
			Description:     "Tennis training and friendly matches",
			Schedule:        "Tuesdays and Thursdays, 3:45 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"alex@mergington.edu"},
		},
		"Drama Club": {
			Description:     "Theater performance and script writing",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 25,
			Participants:    []string{"isabella@mergington.edu", "lucas@mergington.edu"},
		},
		"Art Studio": {
			Description:     "Painting, drawing, and sculpture classes",
			Schedule:        "Mondays and Fridays, 3:30 PM - 4:45 PM",
			MaxParticipants: 18,
			Participants:    []string{"mia@mergington.edu"},
		},
		"Debate Team": {
			Description:     "Competitive debate and public speaking",
			Schedule:        "Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"ryan@mergington.edu", "sarah@mergington.edu"},
		},
		"Science Club": {
			Description:     "Hands-on science experiments and research projects",
			Schedule:        "Tuesdays, 3:30 PM - 4:45 PM",
			MaxParticipants: 20,
			Participants:    []string{"david@mergington.edu"},
		},
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		"Gym Class": {
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
	}
}

// seedFile is the on-disk layout of a seed file.
type seedFile struct {
	Activities map[string]Activity `yaml:"activities"`
}

// LoadSeedFile reads activities from the YAML file at path.
//
// The file looks like:
//
//	activities:
//	  Chess Club:
//	    description: Learn strategies and compete in chess tournaments
//	    schedule: Fridays, 3:30 PM - 5:00 PM
//	    max_participants: 12
//	    participants:
//	      - michael@mergington.edu
func LoadSeedFile(path string) (map[string]Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer f.Close()

	var sf seedFile
	if err := yaml.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}
	if err := validateSeed(sf.Activities); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return sf.Activities, nil
}

func validateSeed(activities map[string]Activity) error {
	if len(activities) == 0 {
		return errors.New("no activities defined")
	}
	for name, a := range activities {
		if strings.TrimSpace(name) == "" {
			return errors.New("activity name cannot be empty")
		}
		if a.MaxParticipants < 0 {
			return fmt.Errorf("activity %q: max_participants cannot be negative", name)
		}
		seen := make(map[string]bool, len(a.Participants))
		for _, email := range a.Participants {
			if seen[email] {
				return fmt.Errorf("activity %q: duplicate participant %s", name, email)
			}
			seen[email] = true
		}
	}
	return nil
}

// Sorted returns the names of activities in a stable order.
func Sorted(activities map[string]Activity) []string {
	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
