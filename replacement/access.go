package replacement

// An AccessType tells the engine what kind of request touched the cache.
type AccessType int

const (
	// AccessLoad is a demand load.
	AccessLoad AccessType = iota

	// AccessRFO is a store that needs ownership of the line.
	AccessRFO

	// AccessPrefetch is a hardware or software prefetch.
	AccessPrefetch

	// AccessWriteback is a dirty eviction arriving from an upper level.
	AccessWriteback
)

// A Line is the host-visible occupancy state of one way, passed into victim
// selection so free slots can be preferred over evictions.
type Line struct {
	Valid   bool
	Address uint64
}

// A Victim is the outcome of victim selection. When Bypass is set the host
// should drop the fill instead of inserting it; Way is still a valid index
// so hosts without bypass support can fill anyway.
type Victim struct {
	Way    int
	Bypass bool
}
