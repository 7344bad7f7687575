package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func paramsFor(query string) *PaginationParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/rides?"+query, nil)
	return GetPaginationParams(c, SortSpec{
		Default: "departure_time",
		Order:   "asc",
		Allowed: map[string]string{"createdAt": "created_at"},
	})
}

func TestPaginationParamsClampAndSort(t *testing.T) {
	p := paramsFor("page=0&page_size=100000&sort=createdAt&order=sideways")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.GetLimit())
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, "desc", p.Order)

	p = paramsFor("sort=password")
	assert.Equal(t, "departure_time", p.Sort)
	assert.Equal(t, "asc", p.Order)
}

func TestGetSortOptionsPagesThroughResults(t *testing.T) {
	p := &PaginationParams{Page: 3, PageSize: 20, Sort: "created_at", Order: "desc"}
	opts := p.GetSortOptions()

	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
}
