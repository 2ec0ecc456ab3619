package storage

import "time"

type Assignment struct {
	ID             int64          `json:"id"`
	AssignerID     int64          `json:"assigner_id"`
	AssignerName   string         `json:"assigner_name"`
	AssigneeID     int64          `json:"assignee_id"`
	AssigneeName   string         `json:"assignee_name"`
	SourceRecordID int64          `json:"source_record_id"`
	LotNo          string         `json:"lot_no"`
	Sizes          map[string]int `json:"sizes"`
	AssignedPieces int            `json:"assigned_pieces"`
	AssignedOn     time.Time      `json:"assigned_on"`
	// IsApproved is nil while the assignee has not decided.
	IsApproved *bool      `json:"is_approved"`
	ApprovedOn *time.Time `json:"approved_on"`
	Remark     string     `json:"assignment_remark"`
}

// SourceRecord is the upstream row an assignment consumes from: a cutting lot
// for stitching, otherwise the previous stage's production record.
type SourceRecord struct {
	ID      int64          `json:"id"`
	OwnerID int64          `json:"owner_id"`
	LotNo   string         `json:"lot_no"`
	SKU     string         `json:"sku"`
	Sizes   map[string]int `json:"sizes"`
}
