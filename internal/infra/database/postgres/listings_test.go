package postgres

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestBuildListingFilter_Empty(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{})
	assert.Empty(t, and)
}

func TestBuildListingFilter_Equality(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{
		City:     strPtr("Pune"),
		Bedrooms: intPtr(2),
		Verified: boolPtr(true),
	})

	sql, args, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	// Eq сортирует колонки по имени
	assert.Equal(t,
		"SELECT 1 FROM listings WHERE (bedrooms = $1 AND city = $2 AND verified = $3)",
		sql)
	assert.Equal(t, []interface{}{2, "Pune", true}, args)
}

func TestBuildListingFilter_Ranges(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{
		MinPrice: floatPtr(1000),
		MaxPrice: floatPtr(5000),
		MinArea:  floatPtr(300),
	})

	sql, args, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT 1 FROM listings WHERE (price >= $1 AND price <= $2 AND area_sq_ft >= $3)",
		sql)
	assert.Equal(t, []interface{}{float64(1000), float64(5000), float64(300)}, args)
}

func TestBuildListingFilter_OneSidedRange(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{MaxRating: floatPtr(4.5)})

	sql, args, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1 FROM listings WHERE (rating <= $1)", sql)
	assert.Equal(t, []interface{}{4.5}, args)
}

func TestBuildListingFilter_AvailabilityWindow(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	and := BuildListingFilter(domain.ListingFilter{AvailableFrom: &from, AvailableTo: &to})

	sql, args, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT 1 FROM listings WHERE (available_from >= $1 AND available_from <= $2)",
		sql)
	assert.Equal(t, []interface{}{from, to}, args)
}

func TestBuildListingFilter_Containment(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{
		Amenities: []string{"pool", "gym"},
		Tags:      []string{"near-metro"},
	})

	sql, args, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT 1 FROM listings WHERE (amenities @> $1 AND tags @> $2)",
		sql)
	require.Len(t, args, 2)
	assert.Equal(t, []string{"pool", "gym"}, args[0])
	assert.Equal(t, []string{"near-metro"}, args[1])
}

func TestBuildListingFilter_Combined(t *testing.T) {
	and := BuildListingFilter(domain.ListingFilter{
		City:      strPtr("Pune"),
		MinPrice:  floatPtr(1000),
		Amenities: []string{"pool"},
	})

	sql, _, err := sq.Select("1").From("listings").Where(and).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT 1 FROM listings WHERE (city = $1 AND price >= $2 AND amenities @> $3)",
		sql)
}
