package pipeline

import (
	"fmt"

	"garment-erp/internal/storage"
)

const (
	StatusNotApplicable = "N/A"
	StatusInLine        = "In-Line"
	StatusCompleted     = "Completed"
)

// Approval is the tri-state of an assignment.
type Approval int

const (
	ApprovalPending Approval = iota
	ApprovalApproved
	ApprovalDenied
)

func ApprovalOf(a *storage.Assignment) Approval {
	switch {
	case a.IsApproved == nil:
		return ApprovalPending
	case *a.IsApproved:
		return ApprovalApproved
	default:
		return ApprovalDenied
	}
}

type StageSnapshot struct {
	// Assignment is the most recent assignment of the lot at this stage, nil
	// when the lot was never assigned here.
	Assignment *storage.Assignment
	Produced   int
}

type LotSnapshot struct {
	LotNo    string
	SKU      string
	CutTotal int
	Stages   map[storage.Stage]StageSnapshot
}

type LotStatus struct {
	LotNo           string `json:"lot_no"`
	SKU             string `json:"sku"`
	Denim           bool   `json:"denim"`
	CutTotal        int    `json:"cut_total"`
	StitchingStatus string `json:"stitching_status"`
	AssemblyStatus  string `json:"assembly_status"`
	WashingStatus   string `json:"washing_status"`
	WashingInStatus string `json:"washing_in_status"`
	FinishingStatus string `json:"finishing_status"`
}

// Of returns the status of one stage.
func (s LotStatus) Of(stage storage.Stage) string {
	switch stage {
	case storage.StageStitching:
		return s.StitchingStatus
	case storage.StageAssembly:
		return s.AssemblyStatus
	case storage.StageWashing:
		return s.WashingStatus
	case storage.StageWashingIn:
		return s.WashingInStatus
	case storage.StageFinishing:
		return s.FinishingStatus
	}
	return ""
}

func (s *LotStatus) set(stage storage.Stage, v string) {
	switch stage {
	case storage.StageStitching:
		s.StitchingStatus = v
	case storage.StageAssembly:
		s.AssemblyStatus = v
	case storage.StageWashing:
		s.WashingStatus = v
	case storage.StageWashingIn:
		s.WashingInStatus = v
	case storage.StageFinishing:
		s.FinishingStatus = v
	}
}

// Project derives the per-stage status of a lot. A stage with no assignment,
// or with an undecided or denied one, blocks every later stage of the chain:
// those stages report the blocking label instead of being evaluated.
func Project(snap LotSnapshot, denim bool) LotStatus {
	out := LotStatus{
		LotNo:           snap.LotNo,
		SKU:             snap.SKU,
		Denim:           denim,
		CutTotal:        snap.CutTotal,
		AssemblyStatus:  StatusNotApplicable,
		WashingStatus:   StatusNotApplicable,
		WashingInStatus: StatusNotApplicable,
	}

	prev := storage.StageCutting
	upstreamTotal := snap.CutTotal
	blocked := ""

	for _, stage := range Chain(denim) {
		if blocked != "" {
			out.set(stage, blocked)
			continue
		}

		st := snap.Stages[stage]
		a := st.Assignment

		switch {
		case a == nil:
			blocked = "In " + prev.Label()
			out.set(stage, blocked)
		case ApprovalOf(a) == ApprovalPending:
			out.set(stage, "Pending Approval by "+a.AssigneeName)
			blocked = "In " + stage.Label()
		case ApprovalOf(a) == ApprovalDenied:
			out.set(stage, "Denied by "+a.AssigneeName)
			blocked = "In " + stage.Label()
		case st.Produced == 0:
			out.set(stage, StatusInLine)
		case upstreamTotal > 0 && st.Produced >= upstreamTotal:
			out.set(stage, StatusCompleted)
		default:
			out.set(stage, fmt.Sprintf("%d Pending", upstreamTotal-st.Produced))
		}

		prev = stage
		upstreamTotal = st.Produced
	}

	return out
}
