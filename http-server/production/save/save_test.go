package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type MockProductionCreator struct {
	mock.Mock
}

func (m *MockProductionCreator) CreateProduction(ctx context.Context, stage storage.Stage, in pipeline.ProductionInput) (*storage.Production, error) {
	args := m.Called(ctx, stage, in)
	p, _ := args.Get(0).(*storage.Production)
	return p, args.Error(1)
}

func serve(t *testing.T, creator ProductionCreator, path, body string, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/api/{stage}/data", CreateProduction(slog.Default(), creator))

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withIdentity {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 7, Username: "stitcher", Role: "stitching"}))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateProduction_Success(t *testing.T) {
	creator := new(MockProductionCreator)
	creator.On("CreateProduction", mock.Anything, storage.StageStitching, mock.MatchedBy(func(in pipeline.ProductionInput) bool {
		return in.UserID == 7 && in.AssignmentID == 3 && in.Sizes["S"] == 40 && in.Sizes["M"] == 60
	})).Return(&storage.Production{ID: 11, LotNo: "AK001", TotalPieces: 100}, nil)

	rr := serve(t, creator, "/api/stitching/data", `{"assignment_id":3,"sizes":{"S":40,"M":60}}`, true)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "AK001", resp["lot_no"])
	assert.EqualValues(t, 100, resp["total_pieces"])
	creator.AssertExpectations(t)
}

func TestCreateProduction_InsufficientRemainder(t *testing.T) {
	creator := new(MockProductionCreator)
	creator.On("CreateProduction", mock.Anything, storage.StageStitching, mock.Anything).
		Return(nil, &pipeline.InsufficientRemainderError{Label: "S", Requested: 50, Remain: 40})

	rr := serve(t, creator, "/api/stitching/data", `{"assignment_id":3,"sizes":{"S":50}}`, true)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "only 40 remain")
}

func TestCreateProduction_Duplicate(t *testing.T) {
	creator := new(MockProductionCreator)
	creator.On("CreateProduction", mock.Anything, storage.StageWashing, mock.Anything).
		Return(nil, &pipeline.DuplicateError{Msg: "production for lot AK001 already exists"})

	rr := serve(t, creator, "/api/washing/data", `{"assignment_id":3,"sizes":{"S":10}}`, true)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateProduction_NotApproved(t *testing.T) {
	creator := new(MockProductionCreator)
	creator.On("CreateProduction", mock.Anything, storage.StageFinishing, mock.Anything).
		Return(nil, &pipeline.AuthorizationError{Msg: "assignment 3 is not approved for you"})

	rr := serve(t, creator, "/api/finishing/data", `{"assignment_id":3,"sizes":{"S":10}}`, true)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateProduction_BadInput(t *testing.T) {
	creator := new(MockProductionCreator)

	rr := serve(t, creator, "/api/stitching/data", `{"sizes":{"S":10}}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "assignmentid is required")

	rr = serve(t, creator, "/api/stitching/data", `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	creator.AssertNotCalled(t, "CreateProduction", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduction_UnknownStage(t *testing.T) {
	creator := new(MockProductionCreator)

	rr := serve(t, creator, "/api/cutting/data", `{"assignment_id":3,"sizes":{"S":10}}`, true)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	creator.AssertNotCalled(t, "CreateProduction", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduction_NoIdentity(t *testing.T) {
	creator := new(MockProductionCreator)

	rr := serve(t, creator, "/api/stitching/data", `{"assignment_id":3,"sizes":{"S":10}}`, false)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
