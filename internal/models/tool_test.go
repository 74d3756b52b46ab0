package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to ToolState }{
		{ToolStateAvailable, ToolStateLoaned},
		{ToolStateAvailable, ToolStateInMaintenance},
		{ToolStateAvailable, ToolStateInactive},
		{ToolStateLoaned, ToolStateAvailable},
		{ToolStateInMaintenance, ToolStateAvailable},
		{ToolStateInactive, ToolStateAvailable},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to ToolState }{
		{ToolStateLoaned, ToolStateInMaintenance},
		{ToolStateLoaned, ToolStateInactive},
		{ToolStateInMaintenance, ToolStateLoaned},
		{ToolStateInMaintenance, ToolStateInactive},
		{ToolStateInactive, ToolStateLoaned},
		{ToolStateInactive, ToolStateInMaintenance},
		{ToolStateAvailable, ToolStateAvailable},
		{ToolState("UNKNOWN"), ToolStateAvailable},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestMaintenanceTypeValid(t *testing.T) {
	assert.True(t, MaintenancePreventive.Valid())
	assert.True(t, MaintenanceCorrective.Valid())
	assert.False(t, MaintenanceType("COSMETIC").Valid())
	assert.False(t, MaintenanceType("").Valid())
}
