package pipeline

// Output names one of the ten tables a run emits.
type Output int

// The fixed output tables, in emission order.
const (
	OutCrews Output = iota
	OutCrewDetails
	OutPirateURLs
	OutPirates
	OutShoppes
	OutRoyals
	OutCrewFailures
	OutPirateURLFailures
	OutPirateFailures
	OutShoppeFailures
)

// Outputs lists every table in emission order.
var Outputs = []Output{
	OutCrews,
	OutCrewDetails,
	OutPirateURLs,
	OutPirates,
	OutShoppes,
	OutRoyals,
	OutCrewFailures,
	OutPirateURLFailures,
	OutPirateFailures,
	OutShoppeFailures,
}

var outputNames = map[Output]string{
	OutCrews:             "crews",
	OutCrewDetails:       "crew_details",
	OutPirateURLs:        "pirate_urls",
	OutPirates:           "pirates",
	OutShoppes:           "shoppes",
	OutRoyals:            "royals",
	OutCrewFailures:      "crew_failures",
	OutPirateURLFailures: "pirate_urls_failures",
	OutPirateFailures:    "pirates_failures",
	OutShoppeFailures:    "shoppes_failures",
}

// String returns the table name, which is also its file stem.
func (o Output) String() string {
	if name, ok := outputNames[o]; ok {
		return name
	}
	return "unknown"
}

// Stamped reports whether the table carries the update stamp column. Failure
// logs do not.
func (o Output) Stamped() bool {
	return o <= OutRoyals
}

// ParseOutput resolves a table name.
func ParseOutput(name string) (Output, bool) {
	for out, n := range outputNames {
		if n == name {
			return out, true
		}
	}
	return 0, false
}
