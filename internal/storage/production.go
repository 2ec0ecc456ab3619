package storage

import "time"

type Production struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	UserName     string           `json:"user_name,omitempty"`
	AssignmentID int64            `json:"assignment_id"`
	LotNo        string           `json:"lot_no"`
	SKU          string           `json:"sku"`
	TotalPieces  int              `json:"total_pieces"`
	Remark       string           `json:"remark"`
	ImageURL     string           `json:"image_url"`
	CreatedAt    time.Time        `json:"created_at"`
	Sizes        []ProductionSize `json:"sizes"`
}

type ProductionSize struct {
	Label  string `json:"size_label"`
	Pieces int    `json:"pieces"`
}

// SizeMap returns the record's sizes keyed by label.
func (p *Production) SizeMap() map[string]int {
	m := make(map[string]int, len(p.Sizes))
	for _, s := range p.Sizes {
		m[s.Label] += s.Pieces
	}
	return m
}
