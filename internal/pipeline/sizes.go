package pipeline

import (
	"sort"
	"strconv"
	"strings"
)

var garmentSizeOrder = map[string]int{
	"XXS": 0, "XS": 1, "S": 2, "M": 3, "L": 4, "XL": 5, "XXL": 6, "2XL": 6, "XXXL": 7, "3XL": 7, "4XL": 8, "5XL": 9,
}

// SortSizes orders labels the way they are printed on a challan: letter
// sizes first (XS..5XL), then numeric waist sizes, then anything else.
func SortSizes(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		return sizeLess(labels[i], labels[j])
	})
}

func sizeLess(a, b string) bool {
	ra, rb := sizeRank(a), sizeRank(b)
	if ra.group != rb.group {
		return ra.group < rb.group
	}
	if ra.order != rb.order {
		return ra.order < rb.order
	}
	return a < b
}

type rank struct {
	group int
	order int
}

func sizeRank(label string) rank {
	up := strings.ToUpper(strings.TrimSpace(label))
	if o, ok := garmentSizeOrder[up]; ok {
		return rank{group: 0, order: o}
	}
	if n, err := strconv.Atoi(up); err == nil {
		return rank{group: 1, order: n}
	}
	return rank{group: 2}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortSizes(keys)
	return keys
}
