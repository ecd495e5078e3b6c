package schema

import "slices"

// Custom string types for type safety.
type (
	// Stage is the raw pipeline stage code of a deal.
	Stage string

	// RiskLevel is the stored risk classification of a deal.
	RiskLevel string

	// Momentum is the engagement trend classification of a deal.
	Momentum string

	// Priority is the urgency of an intervention plan entry.
	Priority string

	// ThreatLevel is the competitive threat classification of a deal.
	ThreatLevel string

	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the status of a deal in a comparison.
	Status string

	// SortMode represents the ordering applied to deal listings.
	SortMode string

	// BreakdownKind selects which grouping a breakdown is keyed by.
	BreakdownKind string

	// ThresholdKey names a policy threshold used by the check command.
	ThresholdKey string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// Pipeline stages known to the label table.
const (
	ProspectingStage   Stage = "prospecting"
	QualificationStage Stage = "qualification"
	ProposalStage      Stage = "proposal"
	NegotiationStage   Stage = "negotiation"
	ClosingStage       Stage = "closing"
)

// Risk levels in ascending order of severity.
const (
	LowRisk      RiskLevel = "Low"
	ModerateRisk RiskLevel = "Moderate"
	HighRisk     RiskLevel = "High"
	CriticalRisk RiskLevel = "Critical"
)

// Momentum classifications from strongest to weakest.
const (
	StrongMomentum    Momentum = "Strong"
	ModerateMomentum  Momentum = "Moderate"
	WeakMomentum      Momentum = "Weak"
	ReversingMomentum Momentum = "Reversing"
	CollapsedMomentum Momentum = "Collapsed"
)

// Intervention priorities.
const (
	ImmediatePriority Priority = "Immediate"
	HighPriority      Priority = "High"
	MediumPriority    Priority = "Medium"
)

// Competitive threat levels.
const (
	NoThreat       ThreatLevel = "None Detected" // default when absent
	LowThreat      ThreatLevel = "Low"
	ModerateThreat ThreatLevel = "Moderate"
	HighThreat     ThreatLevel = "High"
)

// UnknownRep is the rep name used when a deal has none.
const UnknownRep = "Unknown"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All comparison statuses supported.
const (
	NewStatus     Status = "new"
	ActiveStatus  Status = "active"
	RemovedStatus Status = "removed"
)

// All sort modes supported.
const (
	RiskDescSort   SortMode = "risk_desc" // default
	RiskAscSort    SortMode = "risk_asc"
	ValueDescSort  SortMode = "value_desc"
	ValueAscSort   SortMode = "value_asc"
	AtRiskDescSort SortMode = "at_risk_desc"
)

// All breakdown kinds supported.
const (
	StageBreakdownKind BreakdownKind = "stage"
	RepBreakdownKind   BreakdownKind = "rep"
)

// Policy thresholds enforced by the check command.
const (
	DealThreshold    ThresholdKey = "deal"
	AverageThreshold ThresholdKey = "average"
	AtRiskThreshold  ThresholdKey = "at_risk_percent"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllRiskLevels lists the closed set of risk levels in display order.
var AllRiskLevels = []RiskLevel{LowRisk, ModerateRisk, HighRisk, CriticalRisk}

// AllThresholdKeys lists every policy threshold in display order.
var AllThresholdKeys = []ThresholdKey{DealThreshold, AverageThreshold, AtRiskThreshold}

// DefaultThresholds holds the policy defaults used when nothing is configured.
var DefaultThresholds = map[ThresholdKey]float64{
	DealThreshold:    75,
	AverageThreshold: 50,
	AtRiskThreshold:  40,
}

// stageLabels maps raw stage codes to display labels.
var stageLabels = map[Stage]string{
	ProspectingStage:   "Prospecting",
	QualificationStage: "Qualification",
	ProposalStage:      "Proposal",
	NegotiationStage:   "Negotiation",
	ClosingStage:       "Closing",
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSortModes lists all valid sort modes.
var ValidSortModes = map[SortMode]struct{}{
	RiskDescSort:   {},
	RiskAscSort:    {},
	ValueDescSort:  {},
	ValueAscSort:   {},
	AtRiskDescSort: {},
}

// ValidBreakdownKinds lists all valid breakdown kinds.
var ValidBreakdownKinds = map[BreakdownKind]struct{}{
	StageBreakdownKind: {},
	RepBreakdownKind:   {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Label returns the display label for a stage code.
// Unknown codes pass through unchanged.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Known reports whether the stage is in the label table.
func (s Stage) Known() bool {
	_, ok := stageLabels[s]
	return ok
}

// Known reports whether the level is one of the four closed levels.
func (l RiskLevel) Known() bool {
	switch l {
	case LowRisk, ModerateRisk, HighRisk, CriticalRisk:
		return true
	}
	return false
}

// Known reports whether the momentum is a recognized classification.
func (m Momentum) Known() bool {
	switch m {
	case StrongMomentum, ModerateMomentum, WeakMomentum, ReversingMomentum, CollapsedMomentum:
		return true
	}
	return false
}

// Known reports whether the priority is a recognized value.
func (p Priority) Known() bool {
	switch p {
	case ImmediatePriority, HighPriority, MediumPriority:
		return true
	}
	return false
}

// Known reports whether the threat level is a recognized value.
func (t ThreatLevel) Known() bool {
	switch t {
	case NoThreat, LowThreat, ModerateThreat, HighThreat:
		return true
	}
	return false
}

// Known reports whether the key names a policy threshold.
func (k ThresholdKey) Known() bool {
	return slices.Contains(AllThresholdKeys, k)
}

// LevelForScore maps a risk score onto the display thresholds.
// Stored risk levels stay authoritative; this is used for coloring and consistency checks.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return CriticalRisk
	case score >= 50:
		return HighRisk
	case score >= 30:
		return ModerateRisk
	default:
		return LowRisk
	}
}
