package bank

import "github.com/google/uuid"

// Group is the administrative container banks belong to. The accounting core
// only carries the admin identity bank configuration changes are authorized
// against; enforcement happens in the host.
type Group struct {
	ID    uuid.UUID
	Admin uuid.UUID
}

// GroupConfig is the optional-field update descriptor for a group.
type GroupConfig struct {
	Admin *uuid.UUID
}

// NewGroup creates a group owned by the given admin identity.
func NewGroup(admin uuid.UUID) *Group {
	return &Group{ID: uuid.New(), Admin: admin}
}

// Configure applies the present fields of the update descriptor.
func (g *Group) Configure(cfg GroupConfig) {
	if cfg.Admin != nil {
		g.Admin = *cfg.Admin
	}
}
