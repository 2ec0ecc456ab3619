package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type MockLotCreator struct {
	mock.Mock
}

func (m *MockLotCreator) CreateLot(ctx context.Context, in pipeline.LotInput) (*storage.Lot, error) {
	args := m.Called(ctx, in)
	lot, _ := args.Get(0).(*storage.Lot)
	return lot, args.Error(1)
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/cutting/lots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 1, Username: "akash", Role: "cutting"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateLot_Success(t *testing.T) {
	creator := new(MockLotCreator)
	creator.On("CreateLot", mock.Anything, mock.MatchedBy(func(in pipeline.LotInput) bool {
		return in.UserID == 1 && in.Username == "akash" && in.SKU == "DNM-101" &&
			in.TotalLayers == 10 && len(in.Sizes) == 2 && in.Sizes[0].Label == "S"
	})).Return(&storage.Lot{ID: 1, LotNo: "AK001", TotalPieces: 100}, nil)

	body := `{"sku":"DNM-101","fabric_type":"Denim","total_layers":10,
		"sizes":[{"size_label":"S","pattern_count":4},{"size_label":"M","pattern_count":6}]}`
	rr := post(CreateLot(slog.Default(), creator), body)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "AK001", resp["lot_no"])
	assert.EqualValues(t, 100, resp["total_pieces"])
	creator.AssertExpectations(t)
}

func TestCreateLot_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing sku", `{"fabric_type":"Denim","total_layers":10,"sizes":[{"size_label":"S","pattern_count":1}]}`, "sku is required"},
		{"zero layers", `{"sku":"X","fabric_type":"Denim","total_layers":0,"sizes":[{"size_label":"S","pattern_count":1}]}`, "totallayers"},
		{"no sizes", `{"sku":"X","fabric_type":"Denim","total_layers":3,"sizes":[]}`, "sizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockLotCreator)
			rr := post(CreateLot(slog.Default(), creator), tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
			creator.AssertNotCalled(t, "CreateLot", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateLot_ServiceValidation(t *testing.T) {
	creator := new(MockLotCreator)
	creator.On("CreateLot", mock.Anything, mock.Anything).
		Return(nil, &pipeline.ValidationError{Msg: "size S is listed twice"})

	body := `{"sku":"X","fabric_type":"Denim","total_layers":3,
		"sizes":[{"size_label":"S","pattern_count":1},{"size_label":"S","pattern_count":2}]}`
	rr := post(CreateLot(slog.Default(), creator), body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "listed twice")
}
