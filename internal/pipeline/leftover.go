package pipeline

import "garment-erp/internal/storage"

// SizeRemain is one row of a "what is still available" table.
type SizeRemain struct {
	Label    string `json:"size_label"`
	Upstream int    `json:"upstream"`
	Consumed int    `json:"consumed"`
	Remain   int    `json:"remain"`
}

// Remain is upstream minus downstream for one size. It is not clamped, so an
// over-consumed size stays negative and keeps rejecting writes.
func Remain(upstream, downstream map[string]int, label string) int {
	return upstream[label] - downstream[label]
}

// Leftover lists every size known upstream or downstream with its remainder
// clamped at zero for display.
func Leftover(upstream, downstream map[string]int) []SizeRemain {
	labels := make(map[string]int, len(upstream))
	for l := range upstream {
		labels[l] = 0
	}
	for l := range downstream {
		labels[l] = 0
	}

	out := make([]SizeRemain, 0, len(labels))
	for _, l := range sortedKeys(labels) {
		r := Remain(upstream, downstream, l)
		if r < 0 {
			r = 0
		}
		out = append(out, SizeRemain{Label: l, Upstream: upstream[l], Consumed: downstream[l], Remain: r})
	}
	return out
}

// CheckRemain validates requested pieces against the remainder of every size.
// Non-positive requests are skipped. It returns the accepted sizes in print
// order and their total.
func CheckRemain(upstream, downstream, requested map[string]int) ([]storage.ProductionSize, int, error) {
	var (
		accepted []storage.ProductionSize
		total    int
	)
	for _, label := range sortedKeys(requested) {
		pieces := requested[label]
		if pieces <= 0 {
			continue
		}
		if remain := Remain(upstream, downstream, label); pieces > remain {
			return nil, 0, &InsufficientRemainderError{Label: label, Requested: pieces, Remain: remain}
		}
		accepted = append(accepted, storage.ProductionSize{Label: label, Pieces: pieces})
		total += pieces
	}
	return accepted, total, nil
}

func sumSizes(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}
