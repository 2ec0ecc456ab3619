package storage

import "time"

type Dispatch struct {
	ID              int64     `json:"id"`
	FinishingDataID int64     `json:"finishing_data_id"`
	UserID          int64     `json:"user_id"`
	LotNo           string    `json:"lot_no"`
	Label           string    `json:"size_label"`
	Pieces          int       `json:"pieces"`
	Destination     string    `json:"destination"`
	ChallanNo       string    `json:"challan_no"`
	DispatchedAt    time.Time `json:"dispatched_at"`
}
