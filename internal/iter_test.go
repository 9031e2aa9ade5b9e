package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	first := map[string]int{"a": 1}
	second := map[string]int{"b": 2, "c": 3}

	all := maps.Collect(IterSeq2Concat(maps.All(first), maps.All(second)))
	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, all)

	count := 0
	for range IterSeq2Concat(maps.All(second), maps.All(first)) {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestIterSeq2Sorted(t *testing.T) {
	assert := assert.New(t)

	table := map[string]int{"zeta": 26, "alpha": 1, "mu": 12}

	var keys []string
	for key := range IterSeq2Sorted(maps.All(table)) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"alpha", "mu", "zeta"}, keys)

	override := map[string]int{"mu": 13}
	merged := IterSeq2Sorted(IterSeq2Concat(maps.All(table), maps.All(override)))
	assert.Equal(13, maps.Collect(merged)["mu"])
}
