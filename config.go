package strata

import "go.uber.org/zap"

// Config holds package-level tunables that apply to every World unless a
// WorldOption overrides them, mirroring the teacher's package-level
// Config (table.TableEvents) but for the archetype core's own growth and
// logging knobs.
var Config = config{
	DefaultTableCapacity:    64,
	InitialRegistryCapacity: 1024,
	Logger:                  zap.NewNop(),
}

type config struct {
	// DefaultTableCapacity is the row capacity a freshly materialized
	// archetype table reserves up front, per spec §4.F.3 step 3.
	DefaultTableCapacity int

	// InitialRegistryCapacity is the entity registry's first-growth size,
	// per spec §4.D.
	InitialRegistryCapacity int

	// Logger receives structured diagnostics (archetype creation, growth,
	// despawn fixups) at Debug level. Defaults to a no-op logger; set a
	// real *zap.Logger to observe world activity.
	Logger *zap.Logger
}

// SetLogger installs the package-wide default logger used by worlds that
// don't pass WithLogger.
func (c *config) SetLogger(l *zap.Logger) {
	c.Logger = l
}
