package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/courseshop/services/catalog"
)

func TestCourseIDsRoundTrip(t *testing.T) {
	for _, ids := range [][]string{
		{"c1"},
		{"c1", "c2"},
		{"b", "a", "c"},
		{"5f0c6a8e-3b1e-4c89-a1f0-1b7d1c2f8e11", "9a9b3e2c-1111-4d4d-8e8e-000000000001"},
	} {
		joined, err := EncodeCourseIDs(ids)
		require.NoError(t, err)
		assert.Equal(t, ids, DecodeCourseIDs(map[string]string{MetadataCourseIDs: joined}))
	}
}

func TestEncodeCourseIDs(t *testing.T) {
	_, err := EncodeCourseIDs([]string{"a,b"})
	assert.Error(t, err)

	_, err = EncodeCourseIDs([]string{strings.Repeat("x", MaxMetadataValueLength)})
	assert.NoError(t, err)

	_, err = EncodeCourseIDs([]string{strings.Repeat("x", MaxMetadataValueLength), "y"})
	assert.Error(t, err)
}

func TestDecodeCourseIDs(t *testing.T) {
	assert.Equal(t, []string{"c1", "c2"}, DecodeCourseIDs(map[string]string{MetadataCourseIDs: " c1, ,c2,c1,"}))
	assert.Equal(t, []string{"c9"}, DecodeCourseIDs(map[string]string{MetadataCourseID: "c9"}))
	assert.Equal(t, []string{"c1"}, DecodeCourseIDs(map[string]string{MetadataCourseIDs: "c1", MetadataCourseID: "c9"}))
	assert.Empty(t, DecodeCourseIDs(map[string]string{}))
	assert.Empty(t, DecodeCourseIDs(nil))
}

func TestChargedPrice(t *testing.T) {
	discounted := 40.0
	zero := 0.0
	above := 60.0

	course := courseWith(50, &discounted)
	p, tier := chargedPrice(course, true)
	assert.Equal(t, 40.0, p)
	assert.Equal(t, PricingTierLoyalty, tier)

	p, tier = chargedPrice(course, false)
	assert.Equal(t, 50.0, p)
	assert.Equal(t, PricingTierStandard, tier)

	p, _ = chargedPrice(courseWith(50, nil), true)
	assert.Equal(t, 50.0, p)
	p, _ = chargedPrice(courseWith(50, &zero), true)
	assert.Equal(t, 50.0, p)
	p, _ = chargedPrice(courseWith(50, &above), true)
	assert.Equal(t, 50.0, p)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(4999), toMinorUnits(49.99))
	assert.Equal(t, int64(1999), toMinorUnits(19.99))
	assert.Equal(t, int64(0), toMinorUnits(0))
}

func courseWith(p float64, discounted *float64) catalog.Course {
	return catalog.Course{ID: "c1", Title: "t", Price: p, DiscountedPrice: discounted}
}
