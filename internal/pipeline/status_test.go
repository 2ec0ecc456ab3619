package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garment-erp/internal/storage"
)

func decided(name string, approved *bool) *storage.Assignment {
	return &storage.Assignment{AssigneeName: name, IsApproved: approved}
}

func ptr(b bool) *bool { return &b }

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		denim  bool
		stages map[storage.Stage]StageSnapshot
		want   map[storage.Stage]string
	}{
		{
			name:  "nothing assigned",
			denim: false,
			want: map[storage.Stage]string{
				storage.StageStitching: "In Cutting",
				storage.StageAssembly:  StatusNotApplicable,
				storage.StageWashing:   StatusNotApplicable,
				storage.StageWashingIn: StatusNotApplicable,
				storage.StageFinishing: "In Cutting",
			},
		},
		{
			name:  "pending approval blocks downstream",
			denim: true,
			stages: map[storage.Stage]StageSnapshot{
				storage.StageStitching: {Assignment: decided("Sita", ptr(true)), Produced: 100},
				storage.StageAssembly:  {Assignment: decided("Asha", nil)},
				storage.StageWashing:   {Assignment: decided("Wasim", ptr(true)), Produced: 50},
			},
			want: map[storage.Stage]string{
				storage.StageStitching: StatusCompleted,
				storage.StageAssembly:  "Pending Approval by Asha",
				storage.StageWashing:   "In Assembly",
				storage.StageWashingIn: "In Assembly",
				storage.StageFinishing: "In Assembly",
			},
		},
		{
			name:  "partial and in-line",
			denim: true,
			stages: map[storage.Stage]StageSnapshot{
				storage.StageStitching: {Assignment: decided("Sita", ptr(true)), Produced: 80},
				storage.StageAssembly:  {Assignment: decided("Asha", ptr(true)), Produced: 0},
			},
			want: map[storage.Stage]string{
				storage.StageStitching: "20 Pending",
				storage.StageAssembly:  StatusInLine,
				storage.StageWashing:   "In Assembly",
				storage.StageWashingIn: "In Assembly",
				storage.StageFinishing: "In Assembly",
			},
		},
		{
			name:  "denied",
			denim: false,
			stages: map[storage.Stage]StageSnapshot{
				storage.StageStitching: {Assignment: decided("Sita", ptr(false))},
			},
			want: map[storage.Stage]string{
				storage.StageStitching: "Denied by Sita",
				storage.StageAssembly:  StatusNotApplicable,
				storage.StageWashing:   StatusNotApplicable,
				storage.StageWashingIn: StatusNotApplicable,
				storage.StageFinishing: "In Stitching",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := LotSnapshot{LotNo: "X001", CutTotal: 100, Stages: tt.stages}

			got := Project(snap, tt.denim)

			for stage, want := range tt.want {
				assert.Equal(t, want, got.Of(stage), stage)
			}
		})
	}
}

// Once a stage blocks, no later stage can report progress of its own.
func TestProject_BlockingIsMonotonic(t *testing.T) {
	stages := map[storage.Stage]StageSnapshot{}
	for _, s := range Chain(true) {
		stages[s] = StageSnapshot{Assignment: decided("w", ptr(true)), Produced: 100}
	}
	stages[storage.StageWashing] = StageSnapshot{}

	got := Project(LotSnapshot{CutTotal: 100, Stages: stages}, true)

	assert.Equal(t, StatusCompleted, got.StitchingStatus)
	assert.Equal(t, StatusCompleted, got.AssemblyStatus)
	assert.Equal(t, "In Assembly", got.WashingStatus)
	assert.Equal(t, "In Assembly", got.WashingInStatus)
	assert.Equal(t, "In Assembly", got.FinishingStatus)
}
