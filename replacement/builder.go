package replacement

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/llcpolicy/replacement/internal/deadblock"
	"github.com/sarchlab/llcpolicy/replacement/internal/dueling"
	"github.com/sarchlab/llcpolicy/replacement/internal/rrip"
	"github.com/sarchlab/llcpolicy/replacement/internal/ship"
	"github.com/sarchlab/llcpolicy/replacement/internal/stream"
)

// Default geometry and tuning values, taken from a 2MB 16-way LLC.
const (
	DefaultNumSets = 2048
	DefaultNumWays = 16
	DefaultRRPVMax = 3

	// DefaultNearMRUOdds is the 1-in-N probability of the bimodal policies
	// inserting near the MRU position instead of the distant end.
	DefaultNearMRUOdds = 32

	DefaultSignatureBits   = 11
	DefaultSHiPDecayPeriod = 8192
	DefaultDeadDecayPeriod = 4096
	DefaultStreamThreshold = 2
	DefaultLeaderSets      = 32
)

// Builder can build replacement engines.
type Builder struct {
	numSets int
	numWays int
	rrpvMax uint8

	policyA InsertionPolicy
	policyB InsertionPolicy

	enableSHiP    bool
	enableStream  bool
	enableDead    bool
	enableDueling bool

	bypassOnStream  bool
	signatureBits   int
	shipDecayPeriod uint64
	deadDecayPeriod uint64
	streamThreshold uint8
	leaderSets      int
	nearMRUOdds     int

	seed   int64
	logger *log.Logger
}

// MakeBuilder creates a builder with the default LLC geometry and a plain
// SRRIP configuration. Enable predictors with the With methods or start
// from one of the variant builders instead.
func MakeBuilder() Builder {
	return Builder{
		numSets:         DefaultNumSets,
		numWays:         DefaultNumWays,
		rrpvMax:         DefaultRRPVMax,
		policyA:         PolicySRRIP,
		policyB:         PolicyBRRIP,
		signatureBits:   DefaultSignatureBits,
		shipDecayPeriod: DefaultSHiPDecayPeriod,
		deadDecayPeriod: DefaultDeadDecayPeriod,
		streamThreshold: DefaultStreamThreshold,
		leaderSets:      DefaultLeaderSets,
		nearMRUOdds:     DefaultNearMRUOdds,
		seed:            1,
	}
}

// WithNumSets sets the number of sets of the builder.
func (b Builder) WithNumSets(numSets int) Builder {
	b.numSets = numSets
	return b
}

// WithNumWays sets the associativity of the builder.
func (b Builder) WithNumWays(numWays int) Builder {
	b.numWays = numWays
	return b
}

// WithRRPVMax sets the saturation value of the RRPV field.
func (b Builder) WithRRPVMax(rrpvMax uint8) Builder {
	b.rrpvMax = rrpvMax
	return b
}

// WithPolicies sets the two insertion policies the engine duels between.
// Without dueling, only policy A is used.
func (b Builder) WithPolicies(a, b2 InsertionPolicy) Builder {
	b.policyA = a
	b.policyB = b2
	return b
}

// WithSignaturePrediction enables the PC-signature outcome table.
func (b Builder) WithSignaturePrediction() Builder {
	b.enableSHiP = true
	return b
}

// WithSignatureBits sets the width of the signature index.
func (b Builder) WithSignatureBits(bits int) Builder {
	b.signatureBits = bits
	return b
}

// WithSHiPDecayPeriod sets the fill count between outcome-table decays.
func (b Builder) WithSHiPDecayPeriod(period uint64) Builder {
	b.shipDecayPeriod = period
	return b
}

// WithStreamDetection enables the per-set streaming detector.
func (b Builder) WithStreamDetection() Builder {
	b.enableStream = true
	return b
}

// WithStreamBypass makes FindVictim report a bypass for fills into
// streaming sets. Implies stream detection.
func (b Builder) WithStreamBypass() Builder {
	b.enableStream = true
	b.bypassOnStream = true
	return b
}

// WithStreamThreshold sets the confidence a set needs to be flagged
// streaming.
func (b Builder) WithStreamThreshold(threshold uint8) Builder {
	b.streamThreshold = threshold
	return b
}

// WithDeadBlockPrediction enables the per-line liveness counters.
func (b Builder) WithDeadBlockPrediction() Builder {
	b.enableDead = true
	return b
}

// WithDeadDecayPeriod sets the access count between liveness decays.
func (b Builder) WithDeadDecayPeriod(period uint64) Builder {
	b.deadDecayPeriod = period
	return b
}

// WithSetDueling enables leader-set dueling between the two policies.
func (b Builder) WithSetDueling() Builder {
	b.enableDueling = true
	return b
}

// WithLeaderSets sets the number of leader sets dedicated to each policy.
func (b Builder) WithLeaderSets(n int) Builder {
	b.leaderSets = n
	return b
}

// WithNearMRUOdds sets the 1-in-N near-MRU insertion probability of the
// bimodal policies.
func (b Builder) WithNearMRUOdds(n int) Builder {
	b.nearMRUOdds = n
	return b
}

// WithSeed seeds the engine's private random source, keeping bimodal
// insertions reproducible.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithLogger sets the logger the engine reports anomalies to.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build builds an engine with the given name.
func (b Builder) Build(name string) *Engine {
	b.mustHaveValidGeometry()

	e := &Engine{
		name:    name,
		numSets: b.numSets,
		numWays: b.numWays,
		rrpvMax: b.rrpvMax,

		policyA:        b.policyA,
		policyB:        b.policyB,
		bypassOnStream: b.bypassOnStream,
		nearMRUOdds:    b.nearMRUOdds,
		rng:            rand.New(rand.NewSource(b.seed)),
		logger:         b.logger,

		meta: rrip.NewMeta(b.numSets, b.numWays, b.rrpvMax),
	}

	if b.enableSHiP {
		e.outcomes = ship.NewTable(b.signatureBits, b.shipDecayPeriod)
	}

	if b.enableStream {
		e.streams = stream.NewDetector(b.numSets, b.streamThreshold)
	}

	if b.enableDead {
		e.liveness = deadblock.NewPredictor(
			b.numSets, b.numWays, b.deadDecayPeriod)
	}

	if b.enableDueling {
		e.selector = dueling.NewSelector(b.numSets, b.leaderSets)
	}

	return e
}

func (b Builder) mustHaveValidGeometry() {
	if b.numSets <= 0 || b.numSets&(b.numSets-1) != 0 {
		panic(fmt.Errorf("number of sets must be a positive power of two, got %d",
			b.numSets))
	}

	if b.numWays <= 0 {
		panic(fmt.Errorf("number of ways must be positive, got %d", b.numWays))
	}

	if b.rrpvMax == 0 {
		panic(fmt.Errorf("rrpv max must be at least 1"))
	}

	if b.signatureBits < 5 || b.signatureBits > 13 {
		panic(fmt.Errorf("signature width must be 5-13 bits, got %d",
			b.signatureBits))
	}

	if b.nearMRUOdds < 1 {
		panic(fmt.Errorf("near-MRU odds must be at least 1, got %d",
			b.nearMRUOdds))
	}

	if b.enableDueling && 2*b.leaderSets > b.numSets {
		panic(fmt.Errorf("%d leader sets per policy do not fit in %d sets",
			b.leaderSets, b.numSets))
	}
}
