package storage

import "fmt"

// Stage is a department of the production floor. The string value is the
// table prefix used by the stage's assignment and production tables.
type Stage string

const (
	StageCutting   Stage = "cutting"
	StageStitching Stage = "stitching"
	StageAssembly  Stage = "jeans_assembly"
	StageWashing   Stage = "washing"
	StageWashingIn Stage = "washing_in"
	StageFinishing Stage = "finishing"
)

// ProductionStages are the stages that own assignment and production tables.
var ProductionStages = []Stage{StageStitching, StageAssembly, StageWashing, StageWashingIn, StageFinishing}

var stageSlugs = map[string]Stage{
	"cutting":        StageCutting,
	"stitching":      StageStitching,
	"jeans-assembly": StageAssembly,
	"washing":        StageWashing,
	"washing-in":     StageWashingIn,
	"finishing":      StageFinishing,
}

var stageLabels = map[Stage]string{
	StageCutting:   "Cutting",
	StageStitching: "Stitching",
	StageAssembly:  "Assembly",
	StageWashing:   "Washing",
	StageWashingIn: "WashingIn",
	StageFinishing: "Finishing",
}

// ParseStage resolves a URL slug such as "jeans-assembly" into a Stage.
func ParseStage(slug string) (Stage, error) {
	s, ok := stageSlugs[slug]
	if !ok {
		return "", fmt.Errorf("unknown stage %q", slug)
	}
	return s, nil
}

func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Stage) Slug() string {
	for slug, st := range stageSlugs {
		if st == s {
			return slug
		}
	}
	return string(s)
}

// IsProduction reports whether the stage has assignment/production tables.
func (s Stage) IsProduction() bool {
	for _, p := range ProductionStages {
		if p == s {
			return true
		}
	}
	return false
}

type StageTables struct {
	Assignments string
	Data        string
	Sizes       string
	Updates     string
	ForeignKey  string
}

// Tables returns the table names of a production stage. Names come from the
// closed Stage set above, never from user input.
func (s Stage) Tables() StageTables {
	base := string(s)
	return StageTables{
		Assignments: base + "_assignments",
		Data:        base + "_data",
		Sizes:       base + "_data_sizes",
		Updates:     base + "_data_updates",
		ForeignKey:  base + "_data_id",
	}
}
