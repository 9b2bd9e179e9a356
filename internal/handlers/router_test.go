package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/brokerledger/internal/database"
	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
	"github.com/xelth-com/brokerledger/internal/tasks"
	"github.com/xelth-com/brokerledger/internal/unitmaster"
	"github.com/xelth-com/brokerledger/internal/utils"
)

const testLayout = "dong,floor,ho,type,supply_m2,pyeong\n" +
	"101동,12,1203호,84A,112.4,34\n" +
	"101동,25,2501호,84A,112.4,34\n"

type testAPI struct {
	router *Router
	store  *store.Store
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	t.Helper()
	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "ledger.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db.DB, logger.NewNop())
	require.NoError(t, s.Migrate(context.Background()))

	csvPath := filepath.Join(dir, "layout.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testLayout), 0o644))
	layouts := unitmaster.NewRegistry(map[string]string{models.TagComplexXi: csvPath}, time.Minute)

	rec := tasks.NewReconciler(s, tasks.NewEvaluator(layouts, time.UTC), logger.NewNop())
	r := NewRouter(Deps{
		Store:      s,
		Layouts:    layouts,
		Reconciler: rec,
		Log:        logger.NewNop(),
		JWTSecret:  secret,
	})
	return &testAPI{router: r, store: s}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func openKinds(t *testing.T, a *testAPI) map[string]bool {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/tasks?auto=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Task
	decodeBody(t, rec, &list)
	kinds := make(map[string]bool)
	for _, task := range list {
		kinds[fmt.Sprintf("%s:%d", task.Kind, *task.EntityID)] = true
	}
	return kinds
}

func TestHealthAndStatus(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = a.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.Equal(t, "running", status["status"])

	rec = a.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledger_open_auto_tasks")
}

func TestPropertyCreateFillsLayoutAndReconciles(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/properties", map[string]interface{}{
		"tab":   models.TagComplexXi,
		"dong":  "101동",
		"ho":    "1203호",
		"floor": "12",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Property
	decodeBody(t, rec, &p)
	assert.Equal(t, "84A", p.UnitType)
	assert.Equal(t, models.TagComplexXi, p.ComplexName)
	assert.Equal(t, "25", p.TotalFloor)
	require.NotNil(t, p.Area)
	assert.InDelta(t, 112.4, *p.Area, 0.001)

	// complete but without photos
	kinds := openKinds(t, a)
	assert.True(t, kinds[fmt.Sprintf("%s:%d", models.KindPropPhoto, p.ID)])
	assert.False(t, kinds[fmt.Sprintf("%s:%d", models.KindPropInfo, p.ID)])

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/properties/%d/photos", p.ID), map[string]string{
		"file_path": "photos/1.jpg",
		"tag":       "거실",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, openKinds(t, a))

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/properties/%d/photos", p.ID), nil)
	var photos []models.Photo
	decodeBody(t, rec, &photos)
	require.Len(t, photos, 1)

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/photos/%d", photos[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, openKinds(t, a)[fmt.Sprintf("%s:%d", models.KindPropPhoto, p.ID)])
}

func TestPropertyLifecycleEndpoints(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/properties", map[string]interface{}{"tab": models.TagShop})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p models.Property
	decodeBody(t, rec, &p)
	assert.True(t, openKinds(t, a)[fmt.Sprintf("%s:%d", models.KindPropInfo, p.ID)])

	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/properties/%d", p.ID), map[string]interface{}{"note": "급매"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Property
	decodeBody(t, rec, &updated)
	assert.Equal(t, "급매", updated.Note)
	assert.Equal(t, models.TagShop, updated.Tag)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/properties/%d/status", p.ID), map[string]string{"status": "없는상태"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(t, http.MethodPost, fmt.Sprintf("/properties/%d/status", p.ID), map[string]string{"status": models.PropertyStatusClosed})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/properties/%d/hidden", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &updated)
	assert.True(t, updated.Hidden)
	// hidden listings produce no auto tasks
	assert.Empty(t, openKinds(t, a))

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/properties/%d", p.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/properties/%d", p.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/properties/%d/restore", p.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/properties/%d", p.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/properties", map[string]interface{}{"note": "no tab"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rec = a.do(t, http.MethodPost, "/viewings", map[string]interface{}{
		"property_id": 999, "start_at": "2026-02-13 10:00", "end_at": "2026-02-13 11:00", "title": "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewingsAndManualTasks(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/properties", map[string]interface{}{"tab": models.TagShop})
	var p models.Property
	decodeBody(t, rec, &p)

	start := time.Now().UTC().Add(-3 * time.Hour).Format("2006-01-02 15:04")
	end := time.Now().UTC().Add(-2 * time.Hour).Format("2006-01-02 15:04")
	rec = a.do(t, http.MethodPost, "/viewings", map[string]interface{}{
		"property_id": p.ID, "start_at": start, "end_at": end, "title": "현장 안내",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v models.Viewing
	decodeBody(t, rec, &v)
	assert.Equal(t, models.ViewingScheduled, v.Status)
	assert.True(t, openKinds(t, a)[fmt.Sprintf("%s:%d", models.KindViewingOverdue, v.ID)])

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/viewings/%d/status", v.ID), map[string]string{"status": models.ViewingDone})
	require.Equal(t, http.StatusOK, rec.Code)
	kinds := openKinds(t, a)
	assert.False(t, kinds[fmt.Sprintf("%s:%d", models.KindViewingOverdue, v.ID)])
	assert.True(t, kinds[fmt.Sprintf("%s:%d", models.KindViewingResult, v.ID)])

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/viewings/%d/memo", v.ID), map[string]string{"memo": "긍정적"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, openKinds(t, a)[fmt.Sprintf("%s:%d", models.KindViewingResult, v.ID)])

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/viewings?property_id=%d", p.ID), nil)
	var viewings []models.Viewing
	decodeBody(t, rec, &viewings)
	assert.Len(t, viewings, 1)

	rec = a.do(t, http.MethodPost, "/tasks", map[string]interface{}{
		"title": "잔금일 확인", "entity_type": "PROPERTY", "entity_id": p.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task models.Task
	decodeBody(t, rec, &task)
	assert.Equal(t, models.OriginManual, task.Origin)
	assert.Equal(t, models.PropertyRef(p.ID), task.Entity())

	rec = a.do(t, http.MethodPost, "/tasks/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		OpenAutoTasks int           `json:"open_auto_tasks"`
		Tasks         []models.Task `json:"tasks"`
	}
	decodeBody(t, rec, &result)
	assert.Equal(t, 2, result.OpenAutoTasks) // info + photo for the shop
	assert.Len(t, result.Tasks, 3)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/tasks/%d/done", task.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &task)
	assert.Equal(t, models.TaskDone, task.Status)

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/viewings/%d", v.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMatchingAndProposal(t *testing.T) {
	a := newTestAPI(t, "")

	for _, body := range []map[string]interface{}{
		{"tab": models.TagComplexXi, "complex_name": "봉담자이", "area": 84, "pyeong": 25, "floor": "18",
			"condition": "상", "deal_sale": true, "price_sale_eok": 5},
		{"tab": models.TagShop, "deal_jeonse": true, "price_jeonse_eok": 3},
	} {
		rec := a.do(t, http.MethodPost, "/properties", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.do(t, http.MethodPost, "/customers", map[string]interface{}{
		"customer_name": "김민수", "deal_type": "매매", "preferred_area": "80~90",
		"preferred_pyeong": "24~26", "budget_10m": 60, "floor_preference": "고",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Customer
	decodeBody(t, rec, &c)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/matching/%d?limit=5", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Matches []struct {
			PropertyID uint     `json:"property_id"`
			Score      int      `json:"score"`
			Reasons    []string `json:"reasons"`
		} `json:"matches"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Matches, 1)
	assert.Positive(t, resp.Matches[0].Score)
	assert.Contains(t, resp.Matches[0].Reasons, "예산 범위 일치")

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/proposal/message/%d", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg struct {
		Message     string `json:"message"`
		PropertyIDs []uint `json:"property_ids"`
	}
	decodeBody(t, rec, &msg)
	assert.Contains(t, msg.Message, "김민수님")
	assert.Equal(t, []uint{resp.Matches[0].PropertyID}, msg.PropertyIDs)

	rec = a.do(t, http.MethodGet, "/matching/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/customers", map[string]interface{}{
		"customer_name": "이영희", "size_value": "25", "size_unit": "평",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Customer
	decodeBody(t, rec, &c)
	assert.Equal(t, "25", c.PreferredPyeong)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/customers/%d/status", c.ID), map[string]string{"status": models.CustomerStatusOnHold})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/customers/%d/hidden", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodGet, "/customers", nil)
	var list []models.Customer
	decodeBody(t, rec, &list)
	assert.Empty(t, list)
	rec = a.do(t, http.MethodGet, "/customers?include_hidden=true", nil)
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/customers/%d", c.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodPost, fmt.Sprintf("/customers/%d/restore", c.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLayoutEndpoints(t *testing.T) {
	a := newTestAPI(t, "")
	base := "/layouts/" + url.PathEscape(models.TagComplexXi)

	rec := a.do(t, http.MethodGet, base+"/dongs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dongs []string
	decodeBody(t, rec, &dongs)
	assert.Equal(t, []string{"101동"}, dongs)

	rec = a.do(t, http.MethodGet, base+"/dongs/"+url.PathEscape("101동")+"/floors", nil)
	var floors []int
	decodeBody(t, rec, &floors)
	assert.Equal(t, []int{12, 25}, floors)

	rec = a.do(t, http.MethodGet, base+"/dongs/"+url.PathEscape("101동")+"/floors/12/hos/"+url.PathEscape("1203호"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var unit struct {
		Unit       unitmaster.Unit `json:"unit"`
		TotalFloor int             `json:"total_floor"`
	}
	decodeBody(t, rec, &unit)
	assert.Equal(t, "84A", unit.Unit.Type)
	assert.Equal(t, 25, unit.TotalFloor)

	rec = a.do(t, http.MethodGet, "/layouts/"+url.PathEscape(models.TagShop)+"/dongs", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthProtectsAPI(t *testing.T) {
	a := newTestAPI(t, "s3cret")

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/properties", nil).Code)

	token, err := utils.GenerateToken("desk", "s3cret", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/properties", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
