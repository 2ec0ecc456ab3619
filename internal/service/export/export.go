package export

import (
	"context"
	"fmt"

	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type Source interface {
	Entries(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error)
	Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error)
	PICReport(ctx context.Context, filter storage.LotFilter) ([]pipeline.LotStatus, error)
}

// Service renders the download-all and PIC spreadsheets.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

func (s *Service) StageEntries(ctx context.Context, stage storage.Stage, userID int64) ([]byte, error) {
	const op = "service.export.StageEntries"

	list, err := s.source.Entries(ctx, stage, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	labels := collectLabels(len(list), func(i int) []string {
		out := make([]string, 0, len(list[i].Sizes))
		for _, sz := range list[i].Sizes {
			out = append(out, sz.Label)
		}
		return out
	})

	w, err := newWorkbook(stage.Label()+" Entries", append(append([]string{"ID", "Lot No", "SKU", "Worker", "Total Pieces"}, labels...), "Remark", "Created At"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer w.f.Close()

	for i, p := range list {
		row := i + 2
		w.set(1, row, p.ID)
		w.set(2, row, p.LotNo)
		w.set(3, row, p.SKU)
		w.set(4, row, p.UserName)
		w.set(5, row, p.TotalPieces)

		sizes := p.SizeMap()
		for j, l := range labels {
			w.set(6+j, row, sizes[l])
		}
		w.set(6+len(labels), row, p.Remark)
		w.set(7+len(labels), row, p.CreatedAt.Format("2006-01-02 15:04"))
	}

	return w.bytes()
}

func (s *Service) Lots(ctx context.Context, filter storage.LotFilter) ([]byte, error) {
	const op = "service.export.Lots"

	lots, err := s.source.Lots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	labels := collectLabels(len(lots), func(i int) []string {
		out := make([]string, 0, len(lots[i].Sizes))
		for _, sz := range lots[i].Sizes {
			out = append(out, sz.Label)
		}
		return out
	})

	headers := append([]string{"Lot No", "SKU", "Fabric", "Layers", "Total Pieces"}, labels...)
	headers = append(headers, "Remark", "Created At")

	w, err := newWorkbook("Cutting Lots", headers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer w.f.Close()

	for i, lot := range lots {
		row := i + 2
		w.set(1, row, lot.LotNo)
		w.set(2, row, lot.SKU)
		w.set(3, row, lot.FabricType)
		w.set(4, row, lot.TotalLayers)
		w.set(5, row, lot.TotalPieces)

		sizes := make(map[string]int, len(lot.Sizes))
		for _, sz := range lot.Sizes {
			sizes[sz.Label] = sz.TotalPieces
		}
		for j, l := range labels {
			w.set(6+j, row, sizes[l])
		}
		w.set(6+len(labels), row, lot.Remark)
		w.set(7+len(labels), row, lot.CreatedAt.Format("2006-01-02 15:04"))
	}

	return w.bytes()
}

func (s *Service) PICReport(ctx context.Context, filter storage.LotFilter) ([]byte, error) {
	const op = "service.export.PICReport"

	rows, err := s.source.PICReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	w, err := newWorkbook("PIC Report", []string{"Lot No", "SKU", "Chain", "Cut Pieces",
		"Stitching", "Assembly", "Washing", "Washing In", "Finishing"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer w.f.Close()

	for i, st := range rows {
		row := i + 2
		chain := "Non-Denim"
		if st.Denim {
			chain = "Denim"
		}
		w.set(1, row, st.LotNo)
		w.set(2, row, st.SKU)
		w.set(3, row, chain)
		w.set(4, row, st.CutTotal)
		w.set(5, row, st.StitchingStatus)
		w.set(6, row, st.AssemblyStatus)
		w.set(7, row, st.WashingStatus)
		w.set(8, row, st.WashingInStatus)
		w.set(9, row, st.FinishingStatus)
	}

	return w.bytes()
}

// collectLabels returns the distinct size labels of n rows in print order.
func collectLabels(n int, labelsOf func(i int) []string) []string {
	seen := make(map[string]bool)
	var labels []string
	for i := 0; i < n; i++ {
		for _, l := range labelsOf(i) {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	pipeline.SortSizes(labels)
	return labels
}
