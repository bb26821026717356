package catalystwan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// VersionSpecifier is a set of version inequalities such as ">=20.4" or
// ">=20.9,<20.13". Python-style "==" and "~=" operators are accepted.
type VersionSpecifier struct {
	raw         string
	constraints version.Constraints
}

// ParseVersionSpecifier parses a comma-separated list of constraints.
func ParseVersionSpecifier(spec string) (*VersionSpecifier, error) {
	parts := strings.Split(spec, ",")
	norm := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "*") {
			return nil, Errorf(CodeDeclaration, "wildcard versions are not supported: %q", spec)
		}
		switch {
		case strings.HasPrefix(p, "==="):
			p = "=" + p[3:]
		case strings.HasPrefix(p, "=="):
			p = "=" + p[2:]
		case strings.HasPrefix(p, "~="):
			p = "~>" + p[2:]
		}
		norm = append(norm, p)
	}
	if len(norm) == 0 {
		return nil, Errorf(CodeDeclaration, "empty version specifier")
	}
	c, err := version.NewConstraint(strings.Join(norm, ","))
	if err != nil {
		return nil, wrapError(CodeDeclaration, err, "invalid version specifier %q: %v", spec, err)
	}
	return &VersionSpecifier{raw: spec, constraints: c}, nil
}

// Check reports whether v satisfies every constraint.
func (s *VersionSpecifier) Check(v *version.Version) bool {
	return s.constraints.Check(v)
}

func (s *VersionSpecifier) String() string {
	return s.raw
}

var (
	numericCore = regexp.MustCompile(`\d.*\d`)
	releaseRe   = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:-(\d+))?`)
)

// ParseManagerVersion parses a version string reported by the manager.
// Vendor prefixes and suffixes are stripped, so both "20.12.0-144-li" and
// "smart-li-20.13.999-3077" parse. A trailing build number is kept as
// metadata and does not take part in comparisons. It returns nil if no
// version can be found.
func ParseManagerVersion(s string) *version.Version {
	core := numericCore.FindString(s)
	m := releaseRe.FindStringSubmatch(core)
	if m == nil {
		return nil
	}
	candidate := m[1]
	if m[2] != "" {
		candidate += "+" + m[2]
	}
	v, err := version.NewVersion(candidate)
	if err != nil {
		return nil
	}
	return v
}

// ParseAPIVersion reduces a manager version to its major.minor API
// version. It returns nil if s is not a version.
func ParseAPIVersion(s string) *version.Version {
	v := ParseManagerVersion(s)
	if v == nil {
		return nil
	}
	seg := v.Segments()
	api, err := version.NewVersion(fmt.Sprintf("%d.%d", seg[0], seg[1]))
	if err != nil {
		return nil
	}
	return api
}
