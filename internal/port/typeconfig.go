package port

import (
	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// TypeConfigStore yields immutable document type configurations. Loaded once
// at process start; implementations must be safe for concurrent reads.
type TypeConfigStore interface {
	// Get returns the configuration for a type, or nil when not registered.
	Get(id domain.TypeID) *typeconfig.DocumentTypeConfig
	// All returns every registered configuration in declared priority order.
	All() []*typeconfig.DocumentTypeConfig
}
