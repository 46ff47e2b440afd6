package domain

// ScanSettings is the operator-tunable scan configuration. One immutable
// snapshot is loaded at the start of each scan and threaded through the
// sweep; the settings API mutates the persisted copy between scans only.
type ScanSettings struct {
	Region string `json:"region"`
	Locale string `json:"locale"`

	// EligibleSellRealms is the ordered allow-list of realms the operator
	// can realistically sell on. Order gives tie-break precedence. Empty
	// means unrestricted.
	EligibleSellRealms []string `json:"eligible_sell_realms"`

	// MaxRealms caps how many connected realms a sweep visits; 0 means all.
	MaxRealms int `json:"max_realms"`

	// DevMode caps the sweep to DevModeRealmCap realms for fast iteration,
	// overriding MaxRealms.
	DevMode bool `json:"dev_mode"`

	// FeeRate is the auction-house cut applied once to the buy/sell spread.
	FeeRate float64 `json:"fee_rate"`

	// MinProfit is the post-fee profit floor in copper; spreads below it
	// are treated as noise and discarded.
	MinProfit float64 `json:"min_profit"`
}

// DevModeRealmCap is the fixed sweep size used when DevMode is set.
const DevModeRealmCap = 10

// DefaultScanSettings returns the settings used when nothing has been
// persisted yet, and the fallback when a stored value is malformed.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		Region: "us",
		Locale: "en_US",
		EligibleSellRealms: []string{
			"Stormrage",
			"Area 52",
			"Moon Guard",
			"Ragnaros",
			"Dalaran",
			"Zul'jin",
			"Proudmoore",
		},
		MaxRealms: 0,
		DevMode:   false,
		FeeRate:   0.05,
		MinProfit: 1000,
	}
}
