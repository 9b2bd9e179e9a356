package unitmaster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/brokerledger/internal/models"
	"golang.org/x/text/encoding/korean"
)

const layoutCSV = "\xef\xbb\xbfdong,floor,ho,type,supply_m2,pyeong\n" +
	"102동,1,102호,84A,112.4,34\n" +
	"101동,2,201호,59B,79.8,24\n" +
	"101동,1,102호,84A,112.4,34\n" +
	"101동,1,101호,59B,79.8,24\n" +
	"101동,15,1501호,84A,112.4,34\n" +
	"9동,3,301호,59B,79.8,24\n"

func writeLayout(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLookups(t *testing.T) {
	reg := NewRegistry(map[string]string{"단지": writeLayout(t, []byte(layoutCSV))}, 0)

	dongs, err := reg.Dongs("단지")
	require.NoError(t, err)
	assert.Equal(t, []string{"9동", "101동", "102동"}, dongs)

	floors, err := reg.Floors("단지", "101동")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 15}, floors)

	hos, err := reg.Hos("단지", "101동", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"101호", "102호"}, hos)

	unit, ok, err := reg.UnitInfo("단지", "101동", 1, "101호")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "59B", unit.Type)
	assert.InDelta(t, 79.8, unit.SupplyM2, 0.001)
	assert.InDelta(t, 24, unit.Pyeong, 0.001)

	_, ok, err = reg.UnitInfo("단지", "101동", 1, "999호")
	require.NoError(t, err)
	assert.False(t, ok)

	total, err := reg.TotalFloor("단지", "101동")
	require.NoError(t, err)
	assert.Equal(t, 15, total)
}

func TestCP949Fallback(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("dong,floor,ho,type,supply_m2,pyeong\n101동,1,101호,84A,112.4,34\n"))
	require.NoError(t, err)

	units, err := Parse(encoded)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "101동", units[0].Dong)
	assert.Equal(t, "101호", units[0].Ho)
}

func TestHasMasterIsConfiguration(t *testing.T) {
	reg := NewRegistry(map[string]string{"단지": filepath.Join(t.TempDir(), "missing.csv")}, 0)
	assert.True(t, reg.HasMaster("단지"))
	assert.False(t, reg.HasMaster("상가"))

	dongs, err := reg.Dongs("단지")
	require.NoError(t, err)
	assert.Empty(t, dongs)
}

func TestCacheExpiryAndInvalidate(t *testing.T) {
	path := writeLayout(t, []byte(layoutCSV))
	reg := NewRegistry(map[string]string{"단지": path}, time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	dongs, err := reg.Dongs("단지")
	require.NoError(t, err)
	require.Len(t, dongs, 3)

	require.NoError(t, os.WriteFile(path, []byte("dong,floor,ho,type,supply_m2,pyeong\n201동,1,101호,84A,112.4,34\n"), 0o644))

	dongs, _ = reg.Dongs("단지")
	assert.Len(t, dongs, 3, "served from cache within ttl")

	now = now.Add(2 * time.Minute)
	dongs, _ = reg.Dongs("단지")
	assert.Equal(t, []string{"201동"}, dongs)

	require.NoError(t, os.WriteFile(path, []byte(layoutCSV), 0o644))
	reg.Invalidate("단지")
	dongs, _ = reg.Dongs("단지")
	assert.Len(t, dongs, 3)
}

func TestFillProperty(t *testing.T) {
	reg := NewRegistry(map[string]string{"단지": writeLayout(t, []byte(layoutCSV))}, 0)

	p := models.Property{Tag: "단지", Dong: "101동", Floor: "1", Ho: "102호"}
	require.NoError(t, reg.FillProperty(&p))
	assert.Equal(t, "단지", p.ComplexName)
	assert.Equal(t, "84A", p.UnitType)
	require.NotNil(t, p.Area)
	assert.InDelta(t, 112.4, *p.Area, 0.001)
	require.NotNil(t, p.Pyeong)
	assert.InDelta(t, 34, *p.Pyeong, 0.001)
	assert.Equal(t, "15", p.TotalFloor)

	other := models.Property{Tag: "상가", Floor: "1"}
	require.NoError(t, reg.FillProperty(&other))
	assert.Empty(t, other.ComplexName)
}
