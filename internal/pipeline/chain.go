package pipeline

import (
	"slices"
	"strings"

	"garment-erp/internal/storage"
)

var (
	denimChain    = []storage.Stage{storage.StageStitching, storage.StageAssembly, storage.StageWashing, storage.StageWashingIn, storage.StageFinishing}
	nonDenimChain = []storage.Stage{storage.StageStitching, storage.StageFinishing}
)

// Chain returns the production stages a lot passes through after cutting.
func Chain(denim bool) []storage.Stage {
	if denim {
		return denimChain
	}
	return nonDenimChain
}

// InChain reports whether the stage applies to the chain.
func InChain(stage storage.Stage, denim bool) bool {
	for _, s := range Chain(denim) {
		if s == stage {
			return true
		}
	}
	return false
}

// Upstream returns the stage whose output the given stage consumes.
func Upstream(stage storage.Stage, denim bool) storage.Stage {
	prev := storage.StageCutting
	for _, s := range Chain(denim) {
		if s == stage {
			return prev
		}
		prev = s
	}
	return prev
}

// AssignerStages returns the stages whose workers may hand work to the given
// stage, across both chains.
func AssignerStages(stage storage.Stage) []storage.Stage {
	var out []storage.Stage
	for _, denim := range []bool{true, false} {
		if !InChain(stage, denim) {
			continue
		}
		up := Upstream(stage, denim)
		if !slices.Contains(out, up) {
			out = append(out, up)
		}
	}
	return out
}

// Classifier decides the chain of a lot from its lot number prefix.
type Classifier struct {
	prefixes []string
}

func NewClassifier(prefixes []string) Classifier {
	c := Classifier{}
	for _, p := range prefixes {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			c.prefixes = append(c.prefixes, p)
		}
	}
	return c
}

func (c Classifier) IsDenim(lotNo string) bool {
	lotNo = strings.ToUpper(lotNo)
	for _, p := range c.prefixes {
		if strings.HasPrefix(lotNo, p) {
			return true
		}
	}
	return false
}
