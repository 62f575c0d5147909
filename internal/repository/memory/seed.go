package memory

import (
	"fmt"
	"os"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"gopkg.in/yaml.v3"
)

// Seed is the fixture format for a memory store: a fleet with cabin layouts
// and scheduled trips.
type Seed struct {
	Boats []struct {
		ID       int64  `yaml:"id"`
		Name     string `yaml:"name"`
		Capacity int    `yaml:"capacity"`
		Status   string `yaml:"status"`
		Cabins   []struct {
			ID     int64  `yaml:"id"`
			Deck   string `yaml:"deck"`
			Number int    `yaml:"number"`
			Beds   int    `yaml:"beds"`
		} `yaml:"cabins"`
	} `yaml:"boats"`
	Trips []struct {
		ID          int64  `yaml:"id"`
		BoatID      int64  `yaml:"boat_id"`
		Start       string `yaml:"start"`
		End         string `yaml:"end"`
		Discount    int    `yaml:"discount"`
		Destination string `yaml:"destination"`
		Route       string `yaml:"route"`
	} `yaml:"trips"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// Apply loads the fixture into s.
func (s *Store) Apply(seed *Seed) error {
	for _, b := range seed.Boats {
		boat := s.AddBoat(domain.Boat{ID: b.ID, Name: b.Name, Capacity: b.Capacity, Status: domain.BoatStatus(b.Status)})
		for _, c := range b.Cabins {
			s.AddCabin(domain.Cabin{ID: c.ID, BoatID: boat.ID, Deck: c.Deck, Number: c.Number, Beds: c.Beds})
		}
	}
	for _, t := range seed.Trips {
		start, err := domain.ParseDate(t.Start)
		if err != nil {
			return fmt.Errorf("trip %d start: %w", t.ID, err)
		}
		end, err := domain.ParseDate(t.End)
		if err != nil {
			return fmt.Errorf("trip %d end: %w", t.ID, err)
		}
		s.AddTrip(domain.Trip{ID: t.ID, BoatID: t.BoatID, StartDate: start, EndDate: end,
			Discount: t.Discount, Destination: t.Destination, Route: t.Route})
	}
	return nil
}
