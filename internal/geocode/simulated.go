package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sakif/civic-sync/internal/clock"
)

// Neighbourhoods and road names the simulated lookup draws from.
var (
	Areas = []string{
		"Arera Colony", "MP Nagar", "New Market", "Habibganj", "Kolar",
		"Shahpura", "TT Nagar", "Berasia Road", "Govindpura", "Bairagarh",
		"Shyamla Hills", "Indrapuri", "Ayodhya Nagar", "Gulmohar Colony",
	}
	Roads = []string{
		"Main Road", "Link Road", "Station Road", "Market Road",
		"Colony Road", "Bypass Road", "Ring Road", "Service Road",
	}
)

// Config tunes the simulated geocoder.
type Config struct {
	// Delay is how long every lookup takes, imitating a network round trip.
	Delay time.Duration
	// Timeout caps a single lookup including the wait for a free slot.
	Timeout time.Duration
	// MaxConcurrent is the number of lookups allowed in flight at once.
	MaxConcurrent int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Delay:         300 * time.Millisecond,
		Timeout:       5 * time.Second,
		MaxConcurrent: 16,
	}
}

// Simulated is an offline Geocoder. After Config.Delay it answers
// "Near <road>, <area>, Bhopal, Madhya Pradesh" with a random road and area.
// The coordinates do not influence the answer.
type Simulated struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
	slots  chan struct{}

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

var _ Geocoder = (*Simulated)(nil)

// NewSimulated creates a Simulated geocoder. rnd may be nil, in which case
// a randomly seeded source is used. Zero config fields take their defaults.
func NewSimulated(cfg Config, c clock.Clock, rnd *rand.Rand, logger *slog.Logger) *Simulated {
	def := DefaultConfig()
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulated{
		cfg:    cfg,
		clock:  c,
		logger: logger,
		slots:  make(chan struct{}, cfg.MaxConcurrent),
		rnd:    rnd,
	}
}

// Reverse resolves req after the configured delay. It returns ctx.Err() if
// the caller gives up first.
func (g *Simulated) Reverse(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := g.clock.Now()

	select {
	case g.slots <- struct{}{}:
		defer func() { <-g.slots }()
	case <-ctx.Done():
		return nil, fmt.Errorf("geocode: waiting for a free slot: %w", ctx.Err())
	}

	select {
	case <-g.clock.After(g.cfg.Delay):
	case <-ctx.Done():
		return nil, fmt.Errorf("geocode: lookup cancelled: %w", ctx.Err())
	}

	address := g.pick()
	elapsed := g.clock.Now().Sub(start)

	g.logger.Debug("reverse geocode",
		slog.Float64("lat", req.Lat),
		slog.Float64("lng", req.Lng),
		slog.String("address", address),
		slog.Duration("took", elapsed),
	)

	return &Result{Lat: req.Lat, Lng: req.Lng, Address: address, Duration: elapsed}, nil
}

func (g *Simulated) pick() string {
	g.mu.Lock()
	road := Roads[g.rnd.IntN(len(Roads))]
	area := Areas[g.rnd.IntN(len(Areas))]
	g.mu.Unlock()
	return fmt.Sprintf("Near %s, %s, Bhopal, Madhya Pradesh", road, area)
}
