package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNest(t *testing.T) {
	var order []string
	wrap := func(name string) func(func()) func() {
		return func(next func()) func() {
			return func() {
				order = append(order, name)
				next()
			}
		}
	}

	Nest(func() { order = append(order, "final") }, wrap("a"), wrap("b"))()
	assert.Equal(t, []string{"a", "b", "final"}, order)
}

func TestMap(t *testing.T) {
	assert.Nil(t, Map[int, string](nil, func(int) string { return "" }))
	assert.Equal(t, []int{2, 4, 6}, Map([]int{1, 2, 3}, func(value int) int { return value * 2 }))
	assert.Equal(t, []string{}, Map([]string{}, func(value string) string { return value }))
}
