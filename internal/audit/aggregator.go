// Package audit composes read-only passes over the dependency graph, the
// registry and the commit history into a categorized issue list and a
// weighted health score. Passes never mutate the workspace; an unreachable
// registry or repository degrades into a finding instead of failing the run.
package audit

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/changelog"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/internal/upgrade"
)

// Options configure one audit run.
type Options struct {
	// Kinds are the dependency kinds the cycle pass inspects.
	Kinds []entities.DependencyKind

	// UpgradeKinds are the kinds the registry pass classifies.
	UpgradeKinds []entities.DependencyKind

	// TagFormat locates each package's last release tag for the
	// breaking-change pass.
	TagFormat string

	// Concurrency bounds registry fan-out, zero meaning the planner default.
	Concurrency int
}

// Report bundles the findings with their computed health score.
type Report struct {
	Issues []Issue
	Score  float64
}

// NewReport scores the issues with the given weights.
func NewReport(issues []Issue, weights Weights) *Report {
	return &Report{Issues: issues, Score: Score(issues, weights)}
}

// CountBySeverity tallies the issues per severity for summary output.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// Aggregator runs the audit passes. It only reads: the graph for cycles and
// internal spec drift, the registry for outdated and deprecated
// dependencies, the history for unreleased breaking changes.
type Aggregator struct {
	git      repositories.GitRepository
	registry repositories.RegistryGateway
}

// NewAggregator wires an aggregator over the injected capabilities.
func NewAggregator(git repositories.GitRepository, registry repositories.RegistryGateway) *Aggregator {
	return &Aggregator{git: git, registry: registry}
}

// Run executes the passes in a fixed order (cycles, upgrades, breaking
// changes, consistency) so the issue list is deterministic for a given
// workspace state. Only cancellation aborts the run.
func (a *Aggregator) Run(ctx context.Context, ws *entities.Workspace, g *graph.Graph, opts Options) ([]Issue, error) {
	var issues []Issue
	issues = append(issues, a.cyclesPass(g, opts)...)

	upgradeIssues, err := a.upgradesPass(ctx, g, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, entities.NewCancelled(nil)
		}
		logger.Warnf("[audit] registry pass degraded: %v", err)
		issues = append(issues, Issue{
			Category: CategoryOther,
			Severity: SeverityInfo,
			Message:  "registry unavailable: " + err.Error(),
		})
	}
	issues = append(issues, upgradeIssues...)

	breakingIssues, err := a.breakingPass(ctx, ws, g, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, entities.NewCancelled(nil)
		}
		logger.Warnf("[audit] history pass degraded: %v", err)
		issues = append(issues, Issue{
			Category: CategoryOther,
			Severity: SeverityInfo,
			Message:  "commit history unavailable: " + err.Error(),
		})
	}
	issues = append(issues, breakingIssues...)

	issues = append(issues, a.consistencyPass(g)...)
	logger.Debugf("[audit] %d issues found in %q", len(issues), ws.Root)
	return issues, nil
}

// cyclesPass reports every dependency cycle among the inspected kinds. The
// version engine couples cycles rather than rejecting them, so a cycle is a
// warning here, not a failure.
func (a *Aggregator) cyclesPass(g *graph.Graph, opts Options) []Issue {
	var issues []Issue
	for _, cycle := range g.Cycles(opts.Kinds) {
		issues = append(issues, Issue{
			Category: CategoryDependencies,
			Severity: SeverityWarning,
			Package:  cycle[0],
			Message:  "dependency cycle: " + strings.Join(cycle, " -> "),
		})
	}
	return issues
}

// upgradesPass classifies every external reference against the registry.
// Major candidates warn, minor and patch inform, a deprecated dependency is
// a critical security finding regardless of its upgrade class.
func (a *Aggregator) upgradesPass(ctx context.Context, g *graph.Graph, opts Options) ([]Issue, error) {
	rows, err := upgrade.NewPlanner(a.registry).Plan(ctx, g, upgrade.Options{
		Kinds:       opts.UpgradeKinds,
		Concurrency: opts.Concurrency,
		AllowMajor:  true,
		AllowMinor:  true,
		AllowPatch:  true,
	})
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, row := range rows {
		if row.Deprecated {
			issues = append(issues, Issue{
				Category: CategorySecurity,
				Severity: SeverityCritical,
				Package:  row.Package,
				Message:  fmt.Sprintf("%s depends on deprecated package %s", row.Package, row.Dependency),
			})
		}
		severity := SeverityInfo
		if row.Class == upgrade.ClassMajor {
			severity = SeverityWarning
		}
		issues = append(issues, Issue{
			Category: CategoryUpgrades,
			Severity: severity,
			Package:  row.Package,
			Message: fmt.Sprintf("%s upgrade available for %s: %s -> %s",
				row.Class, row.Dependency, row.Current, row.Latest),
		})
	}
	return issues, nil
}

// breakingPass walks each package's commits since its last release tag and
// flags breaking changes that would ship with the next release.
func (a *Aggregator) breakingPass(ctx context.Context, ws *entities.Workspace, g *graph.Graph, opts Options) ([]Issue, error) {
	collector := changelog.NewCollector(a.git)
	var issues []Issue
	for _, name := range g.Names() {
		pkg := g.Get(name)
		log, err := collector.Collect(ctx, changelog.Options{
			Package:    name,
			PathFilter: ws.RelDir(pkg),
			TagFormat:  opts.TagFormat,
		})
		if err != nil {
			return nil, err
		}
		for _, section := range log.Sections {
			for _, entry := range section.Entries {
				if !entry.Breaking {
					continue
				}
				issues = append(issues, Issue{
					Category: CategoryBreaking,
					Severity: SeverityWarning,
					Package:  name,
					Message: fmt.Sprintf("unreleased breaking change in %s: %s (%s)",
						name, entry.Description, entry.ShortHash),
				})
			}
		}
	}
	return issues, nil
}

// consistencyPass compares every internal edge's declared version payload
// with the dependency's current version. The release engine rewrites the
// two in lockstep, so any divergence means a manifest was edited by hand.
func (a *Aggregator) consistencyPass(g *graph.Graph) []Issue {
	var issues []Issue
	for _, owner := range g.Names() {
		for _, edge := range g.EdgesFrom(owner, nil) {
			declared, ok := entities.SpecVersion(edge.Spec)
			if !ok {
				continue // floating specs carry no pinned payload
			}
			current := g.Get(edge.To).Version
			if declared.Equal(current) {
				continue
			}
			issues = append(issues, Issue{
				Category: CategoryConsistency,
				Severity: SeverityWarning,
				Package:  owner,
				Message: fmt.Sprintf("%s declares %s %s but %s is at %s",
					owner, edge.To, edge.Spec, edge.To, current),
			})
		}
	}
	return issues
}
