package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure for retry and exit-code decisions.
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindIO
	KindGit
	KindRegistry
	KindPartialFailure
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindIO:
		return "io"
	case KindGit:
		return "git"
	case KindRegistry:
		return "registry"
	case KindPartialFailure:
		return "partial-failure"
	default:
		return "unknown"
	}
}

// Transient reports whether a caller may retry the failed operation.
// Filesystem, git, registry and partial-write failures are retryable;
// validation, not-found, conflict and configuration failures are not.
func (k ErrorKind) Transient() bool {
	switch k {
	case KindIO, KindGit, KindRegistry, KindPartialFailure:
		return true
	default:
		return false
	}
}

// Exit codes follow sysexits.h conventions.
const (
	ExitUsage    = 65 // EX_DATAERR: validation and missing-resource failures
	ExitNetwork  = 69 // EX_UNAVAILABLE: registry unreachable
	ExitSoftware = 70 // EX_SOFTWARE: git and internal failures
	ExitIO       = 74 // EX_IOERR
	ExitConfig   = 78 // EX_CONFIG
)

// ExitCode maps the kind to a sysexits process exit code.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindConfiguration:
		return ExitConfig
	case KindValidation, KindNotFound:
		return ExitUsage
	case KindIO, KindPartialFailure:
		return ExitIO
	case KindRegistry:
		return ExitNetwork
	case KindGit, KindConflict:
		return ExitSoftware
	default:
		return ExitSoftware
	}
}

// ErrorCode identifies a stable machine-readable error condition.
type ErrorCode string

const (
	CodeConfigInvalid          ErrorCode = "config_invalid"
	CodeInvalidWorkspaceRoot   ErrorCode = "invalid_workspace_root"
	CodeManifestParseFailed    ErrorCode = "manifest_parse_failed"
	CodeEmptyChangeset         ErrorCode = "empty_changeset"
	CodeUnknownEnvironment     ErrorCode = "unknown_environment"
	CodeInvalidBump            ErrorCode = "invalid_bump"
	CodeInvalidArgument        ErrorCode = "invalid_argument"
	CodeChangesetNotFound      ErrorCode = "changeset_not_found"
	CodeCommitNotFound         ErrorCode = "commit_not_found"
	CodeChangesetExists        ErrorCode = "changeset_exists"
	CodeSnapshotNotAllowed     ErrorCode = "snapshot_not_allowed"
	CodePackageNotFound        ErrorCode = "package_not_found"
	CodeTagNotFound            ErrorCode = "tag_not_found"
	CodeConcurrentModification ErrorCode = "concurrent_modification"
	CodeCircularDependency     ErrorCode = "circular_dependency"
	CodeMaxDepthExceeded       ErrorCode = "max_depth_exceeded"
	CodeVersionCalcFailed      ErrorCode = "version_calculation_failed"
	CodeApplyFailed            ErrorCode = "apply_failed"
	CodeIOFailed               ErrorCode = "io_failed"
	CodeGitFailed              ErrorCode = "git_failed"
	CodeRegistryFailed         ErrorCode = "registry_failed"
	CodeRegistryTimeout        ErrorCode = "registry_timeout"
	CodeCancelled              ErrorCode = "cancelled"
)

// DomainError is the single error shape crossing component boundaries.
// Each component constructs it through the helpers below so that kind,
// code and message stay consistent.
type DomainError struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Err     error    // wrapped cause, may be nil
	Paths   []string // file paths already written, for partial failures
}

// Error returns the single-line human message.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As chains.
func (e *DomainError) Unwrap() error { return e.Err }

// Transient reports whether the caller may retry.
func (e *DomainError) Transient() bool { return e.Kind.Transient() }

// ExitCode returns the sysexits code for this error.
func (e *DomainError) ExitCode() int { return e.Kind.ExitCode() }

// --- constructors ---

// NewConfigError reports an invalid or unloadable configuration.
func NewConfigError(message string, cause error) *DomainError {
	return &DomainError{Kind: KindConfiguration, Code: CodeConfigInvalid, Message: message, Err: cause}
}

// NewInvalidWorkspaceRoot reports a root directory with no recognizable manifest.
func NewInvalidWorkspaceRoot(root string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeInvalidWorkspaceRoot,
		Message: fmt.Sprintf("no recognizable package manifest found in %q", root),
	}
}

// NewManifestParseError reports malformed JSON in a manifest file.
func NewManifestParseError(path string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeManifestParseFailed,
		Message: fmt.Sprintf("failed to parse manifest %q", path),
		Err:     cause,
	}
}

// NewEmptyChangesetError reports a changeset saved without packages.
func NewEmptyChangesetError(branch string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeEmptyChangeset,
		Message: fmt.Sprintf("changeset for branch %q has no packages", branch),
	}
}

// NewUnknownEnvironmentError reports an environment outside the configured set.
func NewUnknownEnvironmentError(env string, available []string) *DomainError {
	return &DomainError{
		Kind: KindValidation,
		Code: CodeUnknownEnvironment,
		Message: fmt.Sprintf(
			"environment %q is not one of the available environments (%s)",
			env, strings.Join(available, ", "),
		),
	}
}

// NewInvalidBumpError reports an unparseable bump kind.
func NewInvalidBumpError(raw string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeInvalidBump,
		Message: fmt.Sprintf("invalid bump kind %q (expected major, minor, patch or none)", raw),
	}
}

// NewInvalidArgument reports a command invocation the workspace cannot satisfy.
func NewInvalidArgument(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: CodeInvalidArgument, Message: message}
}

// NewChangesetNotFound reports a missing pending changeset.
func NewChangesetNotFound(branch string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeChangesetNotFound,
		Message: fmt.Sprintf("no changeset found for branch %q", branch),
	}
}

// NewCommitNotFound reports a commit reference the repository cannot resolve.
func NewCommitNotFound(hash string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeCommitNotFound,
		Message: fmt.Sprintf("commit %q does not resolve in this repository", hash),
		Err:     cause,
	}
}

// NewChangesetExists reports an attempt to create over a pending record.
func NewChangesetExists(branch string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeChangesetExists,
		Message: fmt.Sprintf("a changeset already exists for branch %q", branch),
	}
}

// NewSnapshotNotAllowed reports a snapshot request on a release branch when
// the configuration forbids it.
func NewSnapshotNotAllowed(branch string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeSnapshotNotAllowed,
		Message: fmt.Sprintf("snapshot releases are not allowed on release branch %q", branch),
	}
}

// NewPackageNotFound reports a package name absent from the graph.
func NewPackageNotFound(name string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodePackageNotFound,
		Message: fmt.Sprintf("package %q is not part of the workspace", name),
	}
}

// NewTagNotFound reports that no tag matched the configured format.
func NewTagNotFound(format string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeTagNotFound,
		Message: fmt.Sprintf("no version tag matching format %q", format),
	}
}

// NewConcurrentModification reports a lost-update conflict on a changeset.
// Last-write-wins is forbidden for changesets, so the losing writer fails.
func NewConcurrentModification(branch, expected, actual string) *DomainError {
	return &DomainError{
		Kind: KindConflict,
		Code: CodeConcurrentModification,
		Message: fmt.Sprintf(
			"changeset for branch %q was modified concurrently (expected revision %s, found %s)",
			branch, expected, actual,
		),
	}
}

// NewCircularDependency reports a cycle where the caller required an acyclic order.
func NewCircularDependency(cycle []string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeCircularDependency,
		Message: fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> ")),
	}
}

// NewMaxDepthExceeded reports propagation beyond the configured depth bound.
func NewMaxDepthExceeded(pkg string, maxDepth int) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeMaxDepthExceeded,
		Message: fmt.Sprintf("propagation reached package %q beyond max depth %d", pkg, maxDepth),
	}
}

// NewVersionCalcError reports an impossible bump (for example numeric overflow).
func NewVersionCalcError(pkg, version string, bump Bump) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeVersionCalcFailed,
		Message: fmt.Sprintf("cannot apply %s bump to %s@%s", bump, pkg, version),
	}
}

// NewApplyFailed reports a write phase that halted partway; written carries
// the paths already flushed so the caller can roll them back.
func NewApplyFailed(path string, cause error, written []string) *DomainError {
	return &DomainError{
		Kind:    KindPartialFailure,
		Code:    CodeApplyFailed,
		Message: fmt.Sprintf("failed to write manifest %q", path),
		Err:     cause,
		Paths:   written,
	}
}

// NewCancelled reports a write phase aborted by cancellation; written
// carries the files flushed before the abort so the caller can roll back.
func NewCancelled(written []string) *DomainError {
	return &DomainError{
		Kind:    KindPartialFailure,
		Code:    CodeCancelled,
		Message: "operation cancelled",
		Paths:   written,
	}
}

// NewIOError reports a filesystem failure.
func NewIOError(op, path string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindIO,
		Code:    CodeIOFailed,
		Message: fmt.Sprintf("failed to %s %q", op, path),
		Err:     cause,
	}
}

// NewGitError reports a git operation failure.
func NewGitError(operation string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindGit,
		Code:    CodeGitFailed,
		Message: fmt.Sprintf("git %s failed", operation),
		Err:     cause,
	}
}

// NewRegistryError reports a registry query failure.
func NewRegistryError(pkg string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindRegistry,
		Code:    CodeRegistryFailed,
		Message: fmt.Sprintf("registry query for %q failed", pkg),
		Err:     cause,
	}
}

// NewRegistryTimeout reports a registry query exceeding its deadline.
func NewRegistryTimeout(pkg string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindRegistry,
		Code:    CodeRegistryTimeout,
		Message: fmt.Sprintf("registry query for %q timed out", pkg),
		Err:     cause,
	}
}

// KindOf extracts the error kind, defaulting to KindIO for plain errors.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindIO
}

// ExitCodeFor maps any error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.ExitCode()
	}
	return ExitSoftware
}

// IsTransient reports whether any error in the chain is retryable.
func IsTransient(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Transient()
	}
	return false
}
