// Package dueling implements DRRIP/DIP-style set dueling. A few leader sets
// are pinned to each of two competing insertion policies; their hits train a
// shared saturating selector that every follower set consults.
package dueling

// A Role classifies a set for dueling purposes. Roles are assigned once at
// construction and never change.
type Role uint8

const (
	// Follower sets consult the selector to pick a policy.
	Follower Role = iota

	// LeaderA sets always use policy A and train the selector toward A.
	LeaderA

	// LeaderB sets always use policy B and train the selector toward B.
	LeaderB
)

const pselMax = 1023

// A Selector is the shared policy-selection counter plus the static
// leader-role table.
type Selector struct {
	roles []Role
	psel  uint16
}

// NewSelector assigns the first leadersPerPolicy sets as policy-A leaders
// and the next leadersPerPolicy sets as policy-B leaders; all remaining
// sets are followers. The selector starts at its midpoint.
func NewSelector(numSets, leadersPerPolicy int) *Selector {
	s := &Selector{
		roles: make([]Role, numSets),
	}

	for set := 0; set < leadersPerPolicy && set < numSets; set++ {
		s.roles[set] = LeaderA
	}

	for set := leadersPerPolicy; set < 2*leadersPerPolicy && set < numSets; set++ {
		s.roles[set] = LeaderB
	}

	s.Reset()

	return s
}

// Reset restores the selection counter to its midpoint. Leader roles are
// static and survive a reset.
func (s *Selector) Reset() {
	s.psel = (pselMax + 1) / 2
}

// Role returns the dueling role of a set.
func (s *Selector) Role(set int) Role {
	return s.roles[set]
}

// OnHit trains the selector when a leader set scores a hit. Hits in a
// policy-A leader move the counter toward its maximum, hits in a policy-B
// leader toward zero. Follower hits leave the counter untouched.
func (s *Selector) OnHit(set int) {
	switch s.roles[set] {
	case LeaderA:
		if s.psel < pselMax {
			s.psel++
		}
	case LeaderB:
		if s.psel > 0 {
			s.psel--
		}
	case Follower:
	}
}

// PreferA decides which policy a fill in the set should use. Leader sets
// always use their own policy; followers read the selection counter.
func (s *Selector) PreferA(set int) bool {
	switch s.roles[set] {
	case LeaderA:
		return true
	case LeaderB:
		return false
	default:
		return s.psel >= (pselMax+1)/2
	}
}

// PSEL exposes the raw selection counter value.
func (s *Selector) PSEL() uint16 {
	return s.psel
}
