package domain

type Cabin struct {
	ID     int64  `json:"id"`
	BoatID int64  `json:"boat_id"`
	Deck   string `json:"deck"`
	Number int    `json:"number"`
	Beds   int    `json:"beds"`
}

// Less orders cabins by deck, then cabin number.
func (c Cabin) Less(other Cabin) bool {
	if c.Deck != other.Deck {
		return c.Deck < other.Deck
	}
	return c.Number < other.Number
}
