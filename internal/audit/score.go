package audit

// Category groups issues by the subsystem that raised them. The score
// multiplies each issue's severity weight by its category multiplier.
type Category string

const (
	CategoryUpgrades     Category = "upgrades"
	CategoryDependencies Category = "dependencies"
	CategoryBreaking     Category = "breaking-changes"
	CategoryConsistency  Category = "version-consistency"
	CategorySecurity     Category = "security"
	CategoryOther        Category = "other"
)

// Severity ranks how much an issue costs the health score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is one finding of an audit pass.
type Issue struct {
	Category Category
	Severity Severity
	Package  string // affected package, empty for workspace-wide findings
	Message  string
}

// Weights parameterize the health score. Categories without an explicit
// multiplier count at 1.0.
type Weights struct {
	Critical float64
	Warning  float64
	Info     float64

	Security     float64
	Breaking     float64
	Dependencies float64
	Upgrades     float64
}

// DefaultWeights returns the stock scoring parameters.
func DefaultWeights() Weights {
	return Weights{
		Critical:     15,
		Warning:      5,
		Info:         1,
		Security:     1.5,
		Breaking:     1.3,
		Dependencies: 1.2,
		Upgrades:     0.8,
	}
}

func (w Weights) severityWeight(severity Severity) float64 {
	switch severity {
	case SeverityCritical:
		return w.Critical
	case SeverityWarning:
		return w.Warning
	default:
		return w.Info
	}
}

func (w Weights) multiplier(category Category) float64 {
	switch category {
	case CategorySecurity:
		return w.Security
	case CategoryBreaking:
		return w.Breaking
	case CategoryDependencies:
		return w.Dependencies
	case CategoryUpgrades:
		return w.Upgrades
	default:
		return 1.0
	}
}

// Score computes the workspace health score: 100 minus the weighted sum of
// all issues, floored at zero. An issue-free workspace scores 100.
func Score(issues []Issue, weights Weights) float64 {
	penalty := 0.0
	for _, issue := range issues {
		penalty += weights.severityWeight(issue.Severity) * weights.multiplier(issue.Category)
	}
	if penalty >= 100 {
		return 0
	}
	return 100 - penalty
}
