package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		limit int
		want  int
	}{
		{"zero total", 0, 20, 0},
		{"zero total any limit", 0, 1, 0},
		{"exact multiple", 100, 20, 5},
		{"partial last page", 95, 20, 5},
		{"single item", 1, 20, 1},
		{"limit one", 7, 1, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Pages(tc.total, tc.limit))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 10, Offset(2, 10))
	assert.Equal(t, 190, Offset(20, 10))
}
