package user

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		page        int
		size        int
		totalPages  int
		hasPrevious bool
		hasNext     bool
	}{
		{name: "first of three", total: 25, page: 1, size: 10, totalPages: 3, hasPrevious: false, hasNext: true},
		{name: "middle page", total: 25, page: 2, size: 10, totalPages: 3, hasPrevious: true, hasNext: true},
		{name: "last page", total: 25, page: 3, size: 10, totalPages: 3, hasPrevious: true, hasNext: false},
		{name: "exact multiple", total: 20, page: 2, size: 10, totalPages: 2, hasPrevious: true, hasNext: false},
		{name: "empty collection", total: 0, page: 1, size: 10, totalPages: 0, hasPrevious: false, hasNext: false},
		{name: "past the end", total: 5, page: 4, size: 10, totalPages: 1, hasPrevious: true, hasNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]int{}, tt.total, tt.page, tt.size)

			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasPrevious, p.HasPrevious())
			assert.Equal(t, tt.hasNext, p.HasNext())
			assert.Equal(t, tt.total, p.TotalCount)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 0, Offset(3, 0))
	assert.Equal(t, math.MaxInt, Offset(922337203685477581, 20))
	assert.Equal(t, math.MaxInt, Offset(math.MaxInt, math.MaxInt))
}

func TestUser_FullName(t *testing.T) {
	first := "Ivan"
	u := &User{LastName: "Petrov", FirstName: &first}
	assert.Equal(t, "Petrov Ivan", u.FullName())

	u.FirstName = nil
	assert.Equal(t, "Petrov ", u.FullName())
}

func TestUser_Clone(t *testing.T) {
	first := "Ivan"
	u := &User{Login: "ivan", FirstName: &first, LastName: "Petrov"}

	c := u.Clone()
	*c.FirstName = "Changed"

	assert.Equal(t, "Ivan", *u.FirstName)
	assert.Nil(t, (*User)(nil).Clone())
}
