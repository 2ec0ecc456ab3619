package storage

import "time"

const (
	RewashPending   = "pending"
	RewashCompleted = "completed"
)

type Rewash struct {
	ID             int64            `json:"id"`
	WashingDataID  int64            `json:"washing_data_id"`
	UserID         int64            `json:"user_id"`
	LotNo          string           `json:"lot_no"`
	TotalRequested int              `json:"total_requested"`
	Status         string           `json:"status"`
	Remark         string           `json:"remark"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
	Sizes          []ProductionSize `json:"sizes"`
}
