package query

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wisdomairey/real-estate-listings-app/models"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		page    int
		limit   int
		pages   int64
		hasNext bool
		hasPrev bool
		skip    int64
	}{
		{"empty", 0, 1, 12, 0, false, false, 0},
		{"single partial page", 5, 1, 12, 1, false, false, 0},
		{"exact multiple", 24, 1, 12, 2, true, false, 0},
		{"last page", 25, 3, 12, 3, false, true, 24},
		{"middle page", 25, 2, 12, 3, true, true, 12},
		{"past the end", 5, 4, 12, 1, false, true, 36},
		{"limit one", 3, 2, 1, 3, true, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.page, tt.limit)
			assert.Equal(t, tt.pages, p.Pages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.skip, p.Skip())
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPaginate_HugePage(t *testing.T) {
	values := url.Values{"page": {"9223372036854775807"}, "limit": {"12"}}
	var verr *models.ValidationError
	require.ErrorAs(t, ValidateValues(values), &verr)
	assert.Equal(t, "page", verr.Fields[0].Field)
	assert.Equal(t, "Page must be a positive integer", verr.Fields[0].Message)

	require.NoError(t, ValidateValues(url.Values{"page": {strconv.Itoa(MaxPage)}, "limit": {"100"}}))
	p := Paginate(30, MaxPage, MaxLimit)
	assert.Equal(t, int64(MaxPage-1)*MaxLimit, p.Skip())
	assert.False(t, p.HasNext)

	assert.Equal(t, int64(math.MaxInt64), Pagination{Page: math.MaxInt, Limit: 12}.Skip())
}

func TestPaginate_CeilProperty(t *testing.T) {
	for total := int64(0); total <= 250; total++ {
		for _, limit := range []int{1, 7, 12, 100} {
			p := Paginate(total, 1, limit)
			want := total / int64(limit)
			if total%int64(limit) != 0 {
				want++
			}
			require.Equal(t, want, p.Pages, "total=%d limit=%d", total, limit)
			require.False(t, p.HasPrev)
			require.Equal(t, p.Pages > 1, p.HasNext)
		}
	}
}

func TestParseParams_Defaults(t *testing.T) {
	p := ParseParams(url.Values{})
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, DefaultSort, p.Sort)
	assert.Nil(t, p.MinPrice)
	assert.False(t, p.HasLocation())
	assert.Equal(t, DefaultRadiusKm, p.RadiusKm())
}

func TestValidateValues(t *testing.T) {
	tests := []struct {
		raw    string
		fields []string
	}{
		{"", nil},
		{"page=2&limit=100&minPrice=0&status=all&type=villa&radius=0.1", nil},
		{"page=0", []string{"page"}},
		{"limit=101", []string{"limit"}},
		{"limit=abc", []string{"limit"}},
		{"minPrice=-1&maxPrice=x", []string{"minPrice", "maxPrice"}},
		{"bedrooms=1.5", []string{"bedrooms"}},
		{"latitude=91&longitude=-181", []string{"latitude", "longitude"}},
		{"radius=0", []string{"radius"}},
		{"type=castle", []string{"type"}},
		{"status=gone", []string{"status"}},
		{"petFriendly=yes", []string{"petFriendly"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			err = ValidateValues(values)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, ParseSort(""))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, ParseSort("-password"))
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "bedrooms", Value: -1}}, ParseSort("price,-bedrooms"))
	assert.Equal(t, bson.D{{Key: "area", Value: 1}}, ParseSort(" area area"))
}
