package catalystwan

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/hashicorp/go-version"
)

// GuardPolicy selects what happens when a guard does not match.
type GuardPolicy int

const (
	// Lenient logs a warning and lets the call proceed.
	Lenient GuardPolicy = iota
	// Strict aborts the call before any request is sent.
	Strict
)

func (p GuardPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// VersionGuard restricts an operation to a range of API versions.
type VersionGuard struct {
	Specifier *VersionSpecifier
	Policy    GuardPolicy
}

// check passes when current is unknown or satisfies the specifier.
func (g *VersionGuard) check(ctx context.Context, logger *slog.Logger, op string, current *version.Version) error {
	if g == nil || current == nil || g.Specifier.Check(current) {
		return nil
	}
	if g.Policy == Strict {
		return Errorf(CodeVersionMismatch, "%s requires API version %s, server reports %s", op, g.Specifier, current).
			WithDetails(map[string]any{"operation": op, "current": current.String(), "supported": g.Specifier.String()})
	}
	logger.WarnContext(ctx, "unsupported api version",
		slog.String("operation", op),
		slog.String("current", current.String()),
		slog.String("supported", g.Specifier.String()))
	return nil
}

// RoleGuard restricts an operation to a set of session roles.
type RoleGuard struct {
	Allowed []Role
	Policy  GuardPolicy
}

func (g *RoleGuard) check(ctx context.Context, logger *slog.Logger, op string, current Role) error {
	if g == nil || current == RoleUnknown || slices.Contains(g.Allowed, current) {
		return nil
	}
	if g.Policy == Strict {
		return Errorf(CodeViewMismatch, "%s is not allowed for %s sessions, allowed: %s", op, current, g.allowedString()).
			WithDetails(map[string]any{"operation": op, "current": current.String(), "allowed": g.allowedString()})
	}
	logger.WarnContext(ctx, "unsupported session role",
		slog.String("operation", op),
		slog.String("current", current.String()),
		slog.String("allowed", g.allowedString()))
	return nil
}

func (g *RoleGuard) allowedString() string {
	names := make([]string, len(g.Allowed))
	for i, r := range g.Allowed {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
