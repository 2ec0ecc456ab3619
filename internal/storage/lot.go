package storage

import "time"

type Lot struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	LotNo       string    `json:"lot_no"`
	SKU         string    `json:"sku"`
	FabricType  string    `json:"fabric_type"`
	TotalLayers int       `json:"total_layers"`
	TotalPieces int       `json:"total_pieces"`
	Remark      string    `json:"remark"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	Sizes       []LotSize `json:"sizes"`
}

type LotSize struct {
	Label        string `json:"size_label"`
	PatternCount int    `json:"pattern_count"`
	TotalPieces  int    `json:"total_pieces"`
}

type LotFilter struct {
	Search string
	UserID int64
	From   time.Time
	To     time.Time
	Limit  int
}
