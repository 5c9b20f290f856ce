package domain

type FindingStatus string

const (
	FindingVerified FindingStatus = "verified"
	FindingWarning  FindingStatus = "warning"
	FindingFailed   FindingStatus = "failed"
	FindingUnknown  FindingStatus = "unknown"
)

// SourceFinding is the result of invoking one verification source.
// Produced exactly once per source per analysis run and never mutated.
type SourceFinding struct {
	SourceName  string        `json:"source_name"`
	Status      FindingStatus `json:"status"`
	DataFound   string        `json:"data_found"`
	RiskImpact  string        `json:"risk_impact"`
	RawScore    float64       `json:"raw_score"`
	Weight      float64       `json:"weight"`
	Blacklisted bool          `json:"blacklisted,omitempty"`
}

// Inconclusive reports whether the source produced no usable evidence.
func (f SourceFinding) Inconclusive() bool {
	return f.Status == FindingFailed || f.Status == FindingUnknown
}

// UnknownFinding synthesizes the zero-evidence finding used when a source
// call failed, timed out, or was never dispatched.
func UnknownFinding(sourceName string, weight float64, reason string) SourceFinding {
	return SourceFinding{
		SourceName: sourceName,
		Status:     FindingUnknown,
		DataFound:  reason,
		RiskImpact: "NEUTRAL - no evidence collected",
		RawScore:   0,
		Weight:     weight,
	}
}
