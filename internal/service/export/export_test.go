package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type fakeSource struct {
	entries []storage.Production
	lots    []storage.Lot
	report  []pipeline.LotStatus
	err     error
}

func (f *fakeSource) Entries(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error) {
	return f.entries, f.err
}

func (f *fakeSource) Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error) {
	return f.lots, f.err
}

func (f *fakeSource) PICReport(ctx context.Context, filter storage.LotFilter) ([]pipeline.LotStatus, error) {
	return f.report, f.err
}

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestService_StageEntries(t *testing.T) {
	created := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	src := &fakeSource{entries: []storage.Production{
		{ID: 1, LotNo: "AK001", SKU: "JN-1", UserName: "Ravi", TotalPieces: 70, CreatedAt: created,
			Sizes: []storage.ProductionSize{{Label: "M", Pieces: 30}, {Label: "S", Pieces: 40}}},
		{ID: 2, LotNo: "AK002", SKU: "JN-2", UserName: "Asha", TotalPieces: 5, CreatedAt: created,
			Sizes: []storage.ProductionSize{{Label: "XL", Pieces: 5}}},
	}}

	data, err := NewService(src).StageEntries(context.Background(), storage.StageStitching, 0)
	require.NoError(t, err)

	rows := readRows(t, data, "Stitching Entries")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Lot No", "SKU", "Worker", "Total Pieces", "S", "M", "XL", "Remark", "Created At"}, rows[0])
	assert.Equal(t, []string{"1", "AK001", "JN-1", "Ravi", "70", "40", "30", "0", "", "2024-05-02 10:30"}, rows[1])
	assert.Equal(t, "5", rows[2][7])
}

func TestService_PICReport(t *testing.T) {
	src := &fakeSource{report: []pipeline.LotStatus{{
		LotNo: "AK001", SKU: "JN-1", Denim: true, CutTotal: 200,
		StitchingStatus: "In Cutting", AssemblyStatus: "In Cutting", WashingStatus: "In Cutting",
		WashingInStatus: "In Cutting", FinishingStatus: "In Cutting",
	}}}

	data, err := NewService(src).PICReport(context.Background(), storage.LotFilter{})
	require.NoError(t, err)

	rows := readRows(t, data, "PIC Report")
	require.Len(t, rows, 2)
	assert.Equal(t, "Denim", rows[1][2])
	assert.Equal(t, "In Cutting", rows[1][8])
}

func TestService_LotsError(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}

	_, err := NewService(src).Lots(context.Background(), storage.LotFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
