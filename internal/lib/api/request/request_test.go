package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type sample struct {
	LotNo  string `json:"lot_no" validate:"required"`
	Layers int    `json:"layers" validate:"gt=0"`
}

func TestDecode(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var v sample
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lot_no":"AK001","layers":3}`))
		require.NoError(t, Decode(req, &v))
		assert.Equal(t, sample{LotNo: "AK001", Layers: 3}, v)
	})

	t.Run("missing field", func(t *testing.T) {
		var v sample
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"layers":3}`))
		err := Decode(req, &v)

		var verr *pipeline.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Msg, "lotno is required")
	})

	t.Run("broken json", func(t *testing.T) {
		var v sample
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		var verr *pipeline.ValidationError
		assert.ErrorAs(t, Decode(req, &v), &verr)
	})
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestStageAndID(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "stage", "washing-in", "id", "12")

	stage, err := Stage(req)
	require.NoError(t, err)
	assert.Equal(t, storage.StageWashingIn, stage)

	id, err := ID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	bad := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "stage", "cutting", "id", "x")
	_, err = Stage(bad)
	var nf *pipeline.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = ID(bad, "id")
	var verr *pipeline.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLotFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=AK&from=2024-04-01&to=2024-04-30&limit=10", nil)

	f, err := LotFilter(req)
	require.NoError(t, err)
	assert.Equal(t, "AK", f.Search)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.From)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), f.To)
	assert.Equal(t, 10, f.Limit)

	_, err = LotFilter(httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil))
	assert.Error(t, err)
}
