package sourcemap

import "fmt"

// EntityType tags which canonical table a mapping points into.
type EntityType string

const (
	EntityTeam   EntityType = "team"
	EntityLeague EntityType = "league"
)

// Mapping memoizes one provider-local id to its canonical entity id. It is
// created the first time any resolution tier succeeds for that id and
// repointed in place when Tier-1 verification finds the mapping stale.
// Mappings always point at a final, verified record, never at another
// mapping, so redirect depth is capped at one.
type Mapping struct {
	EntityType       EntityType
	Provider         string
	ProviderEntityID string
	EntityID         int64
}

func (m Mapping) Validate() error {
	if m.EntityType != EntityTeam && m.EntityType != EntityLeague {
		return fmt.Errorf("invalid entity type %q", m.EntityType)
	}
	if m.Provider == "" {
		return fmt.Errorf("mapping provider is required")
	}
	if m.ProviderEntityID == "" {
		return fmt.Errorf("mapping provider entity id is required")
	}
	if m.EntityID <= 0 {
		return fmt.Errorf("mapping entity id must be greater than zero")
	}
	return nil
}

// Key is the in-memory lookup key used by the resolver's run-scoped state.
func (m Mapping) Key() string {
	return Key(m.EntityType, m.Provider, m.ProviderEntityID)
}

func Key(entityType EntityType, provider, providerEntityID string) string {
	return fmt.Sprintf("%s|%s|%s", entityType, provider, providerEntityID)
}
