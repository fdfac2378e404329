package entities

type Venue struct {
	// Preamble is a text message sent right before the venue itself
	Preamble  string
	Title     string
	Address   string
	Latitude  float64
	Longitude float64
}
