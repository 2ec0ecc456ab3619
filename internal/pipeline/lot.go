package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"garment-erp/internal/storage"
)

type LotSizeInput struct {
	Label        string `json:"size_label"`
	PatternCount int    `json:"pattern_count"`
}

type LotInput struct {
	UserID      int64
	Username    string
	SKU         string
	FabricType  string
	TotalLayers int
	Sizes       []LotSizeInput
	Remark      string
	ImageURL    string
}

// CreateLot records a cut lot. The lot number is the creator's two-letter
// prefix followed by their next sequence value.
func (s *Service) CreateLot(ctx context.Context, in LotInput) (*storage.Lot, error) {
	const op = "pipeline.CreateLot"

	prefix, err := lotPrefix(in.Username)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SKU) == "" {
		return nil, validationf("sku is required")
	}
	if strings.TrimSpace(in.FabricType) == "" {
		return nil, validationf("fabric type is required")
	}
	if in.TotalLayers <= 0 {
		return nil, validationf("total layers must be greater than 0")
	}
	if len(in.Sizes) == 0 {
		return nil, validationf("at least one size is required")
	}

	lot := &storage.Lot{
		UserID:      in.UserID,
		SKU:         strings.TrimSpace(in.SKU),
		FabricType:  strings.TrimSpace(in.FabricType),
		TotalLayers: in.TotalLayers,
		Remark:      in.Remark,
		ImageURL:    in.ImageURL,
		CreatedAt:   s.now(),
	}

	seen := make(map[string]bool, len(in.Sizes))
	for _, sz := range in.Sizes {
		label := strings.TrimSpace(sz.Label)
		if label == "" {
			return nil, validationf("size label is required")
		}
		if seen[label] {
			return nil, validationf("size %s is listed twice", label)
		}
		seen[label] = true
		if sz.PatternCount <= 0 {
			return nil, validationf("size %s: pattern count must be greater than 0", label)
		}
		pieces := sz.PatternCount * in.TotalLayers
		lot.Sizes = append(lot.Sizes, storage.LotSize{Label: label, PatternCount: sz.PatternCount, TotalPieces: pieces})
		lot.TotalPieces += pieces
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		seq, err := tx.NextSequence(ctx, "lot:"+strconv.FormatInt(in.UserID, 10))
		if err != nil {
			return storeErr(op, "sequence", in.UserID, err)
		}
		lot.LotNo = fmt.Sprintf("%s%03d", prefix, seq)

		id, err := tx.InsertLot(ctx, lot)
		if err != nil {
			return storeErr(op, "lot", lot.LotNo, err)
		}
		lot.ID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lot, nil
}

func lotPrefix(username string) (string, error) {
	var letters []rune
	for _, r := range username {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 2 {
			return string(letters), nil
		}
	}
	return "", validationf("username %q needs two letters to build a lot number", username)
}

// LotSizes returns a lot with its cut sizes.
func (s *Service) LotSizes(ctx context.Context, id int64) (*storage.Lot, error) {
	const op = "pipeline.LotSizes"

	lot, err := s.store.LotByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "lot", id, err))
	}
	return lot, nil
}

func (s *Service) Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error) {
	const op = "pipeline.Lots"

	lots, err := s.store.Lots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "lots", "", err))
	}
	return lots, nil
}
