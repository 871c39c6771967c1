package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Bump identifies the magnitude of a version change. The zero value means
// "record only", which never changes a version number.
type Bump int

const (
	BumpNone Bump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// ParseBump converts a user-supplied bump name into a Bump.
func ParseBump(raw string) (Bump, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	case "none", "":
		return BumpNone, nil
	default:
		return BumpNone, NewInvalidBumpError(raw)
	}
}

// String returns the canonical bump name.
func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return "none"
	}
}

// MaxBump returns the larger of two bumps. Bumps are ordered
// none < patch < minor < major.
func MaxBump(a, b Bump) Bump {
	if a > b {
		return a
	}
	return b
}

// MarshalJSON encodes the bump as its canonical name.
func (b Bump) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a bump name, rejecting unknown values.
func (b *Bump) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBump(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ErrVersionOverflow is returned when a bump would overflow a version component.
var ErrVersionOverflow = errors.New("version component overflow")

// Version is an immutable semantic version.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a strict semantic version such as "1.2.3" or
// "2.0.0-rc.1". A leading "v" is tolerated because git tags often carry one.
func ParseVersion(raw string) (Version, error) {
	parsed, err := semver.StrictNewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse version %q: %w", raw, err)
	}
	return Version{v: parsed}, nil
}

// MustParseVersion parses a version or panics. Test helper.
func MustParseVersion(raw string) Version {
	version, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return version
}

// String renders the version without a "v" prefix, as npm expects.
func (v Version) String() string {
	if v.v == nil {
		return "0.0.0"
	}
	return v.v.String()
}

// Major returns the major component.
func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

// Minor returns the minor component.
func (v Version) Minor() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Minor()
}

// Patch returns the patch component.
func (v Version) Patch() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Patch()
}

// Prerelease returns the prerelease identifiers, empty for stable versions.
func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}
	return v.v.Prerelease()
}

// IsSnapshot reports whether the version was stamped by a snapshot release.
func (v Version) IsSnapshot() bool {
	pre := v.Prerelease()
	return pre == "snapshot" || strings.HasSuffix(pre, ".snapshot")
}

// Compare orders versions by semver precedence.
func (v Version) Compare(other Version) int {
	return v.semver().Compare(other.semver())
}

// Equal reports semver equality disregarding build metadata.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// LessThan reports whether v precedes other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

func (v Version) semver() *semver.Version {
	if v.v == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.v
}

// ApplyBump returns the version after the bump. A none bump returns the
// version unchanged. Bumping strips any prerelease identifiers, matching
// semver increment semantics. Overflow of the bumped component yields
// ErrVersionOverflow instead of wrapping around.
func (v Version) ApplyBump(bump Bump) (Version, error) {
	current := v.semver()
	switch bump {
	case BumpNone:
		return v, nil
	case BumpMajor:
		if current.Major() == math.MaxUint64 {
			return Version{}, ErrVersionOverflow
		}
		next := current.IncMajor()
		return Version{v: &next}, nil
	case BumpMinor:
		if current.Minor() == math.MaxUint64 {
			return Version{}, ErrVersionOverflow
		}
		next := current.IncMinor()
		return Version{v: &next}, nil
	case BumpPatch:
		if current.Patch() == math.MaxUint64 {
			return Version{}, ErrVersionOverflow
		}
		next := current.IncPatch()
		return Version{v: &next}, nil
	default:
		return Version{}, fmt.Errorf("unsupported bump %d", int(bump))
	}
}

// Snapshot stamps the version with a snapshot prerelease derived from a
// short commit hash, producing for example "1.2.4-abc1234.snapshot".
func (v Version) Snapshot(shortHash string) (Version, error) {
	stamped, err := v.semver().SetPrerelease(shortHash + ".snapshot")
	if err != nil {
		return Version{}, fmt.Errorf("failed to stamp snapshot version: %w", err)
	}
	return Version{v: &stamped}, nil
}
