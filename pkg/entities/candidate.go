package entities

import "strings"

// Candidate is a reply drawn from the response pool
type Candidate struct {
	Kind CandidateKind
	Text string
}

type CandidateKind string

const (
	// CandidateKindText means Text has to be sent as is
	CandidateKindText CandidateKind = "text"

	// CandidateKindSticker means a sticker has to be drawn and sent instead of text
	CandidateKindSticker CandidateKind = "sticker"

	// CandidateKindVenue means the configured venue has to be sent instead of text
	CandidateKindVenue CandidateKind = "venue"
)

const (
	StickerMarker = "[sticker]"
	VenueMarker   = "[venue]"
)

// ParseCandidate turns a configured response line into a candidate. Markers
// are matched case-insensitively ignoring surrounding spaces, anything else
// is a text reply.
func ParseCandidate(raw string) Candidate {
	marker := strings.TrimSpace(raw)

	switch {
	case strings.EqualFold(marker, StickerMarker):
		return Candidate{Kind: CandidateKindSticker}
	case strings.EqualFold(marker, VenueMarker):
		return Candidate{Kind: CandidateKindVenue}
	default:
		return Candidate{Kind: CandidateKindText, Text: raw}
	}
}
