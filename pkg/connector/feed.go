package connector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sync"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

const (
	// DiscoveryThreshold is the attributed record count at which discovery
	// stops producing records.
	DiscoveryThreshold = 5
	// MaxDiscoveredPerSync bounds the records added by one sync.
	MaxDiscoveredPerSync = 2
	// MaxRemoteDelta bounds the simulated remote item growth reported once
	// discovery has stopped.
	MaxRemoteDelta = 4
)

// Discovery is the outcome of one discovery run.
type Discovery struct {
	Records []model.DocumentRecord
	// RemoteDelta is added to ItemsIndexed on top of the records.
	RemoteDelta int
}

// Discoverer finds records for a connector. existing is the number of
// records already attributed to it.
type Discoverer interface {
	Discover(ctx context.Context, c model.Connector, existing int) (Discovery, error)
}

// SimulatedFeed synthesizes records instead of crawling a real source.
type SimulatedFeed struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedFeed creates a feed. A nil source means a randomly seeded one.
func NewSimulatedFeed(src rand.Source) *SimulatedFeed {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &SimulatedFeed{rnd: rand.New(src)}
}

func (f *SimulatedFeed) Discover(ctx context.Context, c model.Connector, existing int) (Discovery, error) {
	if err := ctx.Err(); err != nil {
		return Discovery{}, err
	}
	if c.TargetURL != "" {
		u, err := url.Parse(c.TargetURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return Discovery{}, fmt.Errorf("unreachable target %q", c.TargetURL)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	n := min(DiscoveryThreshold-existing, MaxDiscoveredPerSync)
	if n <= 0 {
		return Discovery{RemoteDelta: f.rnd.IntN(MaxRemoteDelta + 1)}, nil
	}

	d := Discovery{Records: make([]model.DocumentRecord, 0, n)}
	for range n {
		d.Records = append(d.Records, model.DocumentRecord{
			ID:             store.NewID(),
			Title:          fmt.Sprintf("%s_Doc_%04d.pdf", shortName(c.Type), f.rnd.IntN(10000)),
			Type:           model.DocumentPDF,
			Classification: model.ClassificationInternal,
			Status:         model.StatusActive,
			RiskScore:      40,
			Source:         c.Name,
			Checksum:       store.NewChecksum(),
			Custodian:      displayName(c.Type) + " Sync",
			Format:         "application/pdf",
		})
	}
	return d, nil
}

func displayName(t model.ConnectorType) string {
	switch t {
	case model.ConnectorGoogleDrive:
		return "Google Drive"
	default:
		return string(t)
	}
}

func shortName(t model.ConnectorType) string {
	switch t {
	case model.ConnectorGoogleDrive:
		return "Drive"
	default:
		return string(t)
	}
}
