package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	e "nuclight.org/reply-tg-bot/pkg/entities"
)

var ErrEmptyPool = errors.New("empty pool")

type Config struct {
	Responses []string
	Stickers  []string
	Triggers  []string
	Venue     e.Venue
}

// Catalog holds configured replies and draws them uniformly at random.
// Responses may contain [sticker] and [venue] markers, those are resolved
// into candidate kinds once, when the catalog is built.
type Catalog struct {
	responses []e.Candidate
	stickers  []string
	venue     e.Venue

	mu  sync.Mutex
	rnd *rand.Rand
}

// New validates the configuration and builds a catalog. A nil rnd means a
// randomly seeded source.
func New(cfg Config, rnd *rand.Rand) (*Catalog, error) {
	if len(cfg.Responses) == 0 {
		return nil, fmt.Errorf("responses: %w", ErrEmptyPool)
	}

	if len(cfg.Stickers) == 0 {
		return nil, fmt.Errorf("stickers: %w", ErrEmptyPool)
	}

	if len(cfg.Triggers) == 0 {
		return nil, fmt.Errorf("trigger keywords: %w", ErrEmptyPool)
	}

	if strings.TrimSpace(cfg.Venue.Title) == "" || strings.TrimSpace(cfg.Venue.Address) == "" {
		return nil, errors.New("venue title and address are required")
	}

	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	responses := make([]e.Candidate, 0, len(cfg.Responses))
	for _, raw := range cfg.Responses {
		responses = append(responses, e.ParseCandidate(raw))
	}

	return &Catalog{
		responses: responses,
		stickers:  append([]string(nil), cfg.Stickers...),
		venue:     cfg.Venue,
		rnd:       rnd,
	}, nil
}

func (c *Catalog) PickResponse() e.Candidate {
	return c.responses[c.intN(len(c.responses))]
}

func (c *Catalog) PickSticker() string {
	return c.stickers[c.intN(len(c.stickers))]
}

func (c *Catalog) Venue() e.Venue {
	return c.venue
}

func (c *Catalog) intN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rnd.IntN(n)
}
