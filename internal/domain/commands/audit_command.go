package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/audit"
	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
)

// Audit is the interface for the audit command.
type Audit interface {
	Execute(ctx context.Context, settings *config.Settings, opts AuditOptions) error
}

// AuditOptions holds the runtime options for one audit run.
type AuditOptions struct {
	Root string
}

// AuditCommand runs the read-only health passes over the workspace and
// reports the findings with a weighted score. Unreachable registries or
// missing history degrade into findings instead of failing the run.
type AuditCommand struct {
	loader   WorkspaceLoader
	git      repositories.GitRepositoryOpener
	registry repositories.RegistryGatewayFactory
}

// NewAuditCommand creates the command with its dependencies.
func NewAuditCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	registry repositories.RegistryGatewayFactory,
) *AuditCommand {
	return &AuditCommand{loader: loader, git: git, registry: registry}
}

// Execute runs the audit passes and logs the report.
func (it *AuditCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts AuditOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	g := graph.Build(ws)

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	gateway := it.registry.New(settings.Upgrade.RegistryURL, settings.UpgradeTimeout())

	issues, err := audit.NewAggregator(gitRepo, gateway).Run(ctx, ws, g, audit.Options{
		Kinds:        settings.PropagationKinds(),
		UpgradeKinds: settings.UpgradeKinds(),
		TagFormat:    settings.TagFormatFor(ws.Kind),
		Concurrency:  settings.Upgrade.Concurrency,
	})
	if err != nil {
		return err
	}

	report := audit.NewReport(issues, auditWeights(settings))
	for _, issue := range report.Issues {
		line := fmt.Sprintf("[audit] %s/%s: %s", issue.Severity, issue.Category, issue.Message)
		switch issue.Severity {
		case audit.SeverityCritical:
			logger.Error(line)
		case audit.SeverityWarning:
			logger.Warn(line)
		default:
			logger.Info(line)
		}
	}

	counts := report.CountBySeverity()
	logger.Infof("[audit] health score %.1f/100 (%d critical, %d warning, %d info)",
		report.Score,
		counts[audit.SeverityCritical], counts[audit.SeverityWarning], counts[audit.SeverityInfo])
	return nil
}

func auditWeights(settings *config.Settings) audit.Weights {
	return audit.Weights{
		Critical:     settings.Audit.WeightCritical,
		Warning:      settings.Audit.WeightWarning,
		Info:         settings.Audit.WeightInfo,
		Security:     settings.Audit.MultiplierSecurity,
		Breaking:     settings.Audit.MultiplierBreaking,
		Dependencies: settings.Audit.MultiplierDependencies,
		Upgrades:     settings.Audit.MultiplierUpgrades,
	}
}
