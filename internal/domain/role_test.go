package domain_test

import (
	"testing"

	"github.com/mira/workspace-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestRole_HasCapability(t *testing.T) {
	role := domain.Role{
		Permissions: datatypes.JSON(`["host_sessions","view_reports","not_a_real_permission"]`),
	}

	assert.True(t, role.HasCapability(domain.CapHostSessions))
	assert.True(t, role.HasCapability(domain.CapViewReports))
	assert.False(t, role.HasCapability(domain.CapManageQuotas))

	// Unknown permission strings are dropped at translation.
	assert.Len(t, role.Capabilities(), 2)
}

func TestRole_OwnerBypass(t *testing.T) {
	owner := domain.Role{IsOwnerRole: true, Permissions: datatypes.JSON(`[]`)}

	for _, c := range domain.AllCapabilities {
		assert.True(t, owner.HasCapability(c), "owner role must hold %s", c)
	}
}
