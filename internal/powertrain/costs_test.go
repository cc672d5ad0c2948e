package powertrain

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

func TestWriteCosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powertrain_costs.csv")
	rows := []VehicleCost{
		{
			VehicleID:  7,
			ModelYear:  2030,
			Powertrain: domain.PowertrainBEV,
			Cost:       Cost{EMachine: 900, Battery: 4000, ElectrifiedDriveline: 1100},
		},
		{
			VehicleID:  1,
			ModelYear:  2030,
			Powertrain: domain.PowertrainICE,
			Cost:       Cost{Engine: 500, Driveline: 300},
		},
	}
	require.NoError(t, WriteCosts(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "powertrain_cost_dollars", got[0][len(got[0])-1])

	// rows come back in vehicle_id order regardless of input order
	assert.Equal(t, "1", got[1][0])
	assert.Equal(t, "ICE", got[1][2])
	assert.Equal(t, "800", got[1][len(got[1])-1])
	assert.Equal(t, "7", got[2][0])
	assert.Equal(t, "6000", got[2][len(got[2])-1])
}
