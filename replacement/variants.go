package replacement

// The variant builders below pin down the well-known policy families as
// configurations of the shared building blocks. Each returns a Builder so
// callers can still override geometry or tuning before Build.

// SRRIPBuilder configures static RRIP: every fill at the medium-distant
// RRPV, no predictors.
func SRRIPBuilder() Builder {
	return MakeBuilder().
		WithPolicies(PolicySRRIP, PolicySRRIP)
}

// BRRIPBuilder configures bimodal RRIP: distant fills with a 1-in-32 chance
// of a medium-distant fill.
func BRRIPBuilder() Builder {
	return MakeBuilder().
		WithPolicies(PolicyBRRIP, PolicyBRRIP)
}

// DRRIPBuilder configures dynamic RRIP: SRRIP and BRRIP dueling through
// leader sets.
func DRRIPBuilder() Builder {
	return MakeBuilder().
		WithPolicies(PolicySRRIP, PolicyBRRIP).
		WithSetDueling()
}

// DIPBuilder configures the dynamic insertion policy: LIP and BIP dueling
// through leader sets.
func DIPBuilder() Builder {
	return MakeBuilder().
		WithPolicies(PolicyLIP, PolicyBIP).
		WithSetDueling()
}

// HybridBuilder configures the maximally general engine: DRRIP dueling,
// signature-based hit prediction, streaming detection with bypass, and
// dead-block approximation.
func HybridBuilder() Builder {
	return MakeBuilder().
		WithPolicies(PolicySRRIP, PolicyBRRIP).
		WithSetDueling().
		WithSignaturePrediction().
		WithStreamBypass().
		WithDeadBlockPrediction()
}
