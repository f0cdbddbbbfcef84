package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscardel13/calorie-tracker/config"
	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/services"
)

var secret = []byte("router-test")

type testUploader struct{ calls int }

func (u *testUploader) Upload(context.Context, []byte) (string, error) {
	u.calls++
	return "s3://bucket/caltrack.json", nil
}

func newTestRouter(t *testing.T, uploader services.Uploader) *gin.Engine {
	t.Helper()
	r, _ := newTestRouterWithHub(t, uploader)
	return r
}

func newTestRouterWithHub(t *testing.T, uploader services.Uploader) (*gin.Engine, *services.RealtimeHub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := config.OpenDB(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = config.Close(db) })

	store := repository.NewGormStore(db)
	hub := services.NewRealtimeHub()
	return SetupRouter(Deps{
		Store:    store,
		Hub:      hub,
		Uploader: uploader,
		Auth:     services.NewAuthService(store, secret, time.Hour, nil),
		Secret:   secret,
	}), hub
}

type client struct {
	t     *testing.T
	r     http.Handler
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func signup(t *testing.T, r http.Handler, user string) *client {
	t.Helper()
	c := &client{t: t, r: r}
	w := c.do(http.MethodPost, "/auth/signup", gin.H{"user": user, "pin": "1234"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c.token = decode[map[string]string](t, w)["token"]
	return c
}

func TestAuthRoutes(t *testing.T) {
	r := newTestRouter(t, nil)
	anon := &client{t: t, r: r}

	signup(t, r, "oscar")

	assert.Equal(t, http.StatusConflict, anon.do(http.MethodPost, "/auth/signup", gin.H{"user": "oscar"}).Code)
	assert.Equal(t, http.StatusBadRequest, anon.do(http.MethodPost, "/auth/signup", gin.H{"pin": "1"}).Code)
	assert.Equal(t, http.StatusOK, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "oscar", "pin": "1234"}).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "oscar", "pin": "0"}).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "ghost"}).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/weeks", nil).Code)
	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/healthz", nil).Code)
}

func TestWeekRoutes(t *testing.T) {
	r := newTestRouter(t, nil)
	c := signup(t, r, "oscar")

	w := c.do(http.MethodGet, "/weeks/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("validation", func(t *testing.T) {
		cases := map[string]any{
			"missing calories": gin.H{"start": "2025-11-03", "weekly": gin.H{"carbs": 100}},
			"missing weekly":   gin.H{"start": "2025-11-03"},
			"negative":         gin.H{"start": "2025-11-03", "weekly": gin.H{"calories": -10}},
			"no start":         gin.H{"weekly": gin.H{"calories": 7000}},
			"bad start":        gin.H{"start": "11/03/2025", "weekly": gin.H{"calories": 7000}},
			"unknown mode":     gin.H{"start": "2025-11-03", "mode": "monthly"},
			"six days":         gin.H{"start": "2025-11-03", "mode": "daily", "daily": make([]gin.H, 6)},
			"not a number":     `{"start":"2025-11-03","weekly":{"calories":"lots"}}`,
		}
		for name, body := range cases {
			w := c.do(http.MethodPost, "/weeks", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, name+": "+w.Body.String())
		}
	})

	w = c.do(http.MethodPost, "/weeks", gin.H{
		"week_name": "Cut",
		"start":     "2025-11-03",
		"weekly":    gin.H{"calories": 14000, "protein": 1050},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	week := decode[models.Week](t, w)
	assert.Equal(t, "Cut", week.Name)
	assert.Equal(t, 150.0, week.Days[0].ProteinGoal)

	w = c.do(http.MethodPost, "/weeks/latest/days/2025-11-04/items", gin.H{"name": "rice", "calories": 400})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/weeks/latest/days/2025-12-01/items", gin.H{"calories": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/weeks/latest/days/yesterday/items", gin.H{"calories": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/weeks/latest/days/2025-11-04/items", gin.H{"name": "air"}).Code)

	w = c.do(http.MethodGet, "/weeks/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[services.WeekSummary](t, w)
	assert.Equal(t, 400.0, summary.Totals.Calories)
	assert.Equal(t, services.Allowance{Value: 2267, RemainingCalories: 13600, MissingDays: 6}, summary.Allowance)

	w = c.do(http.MethodPost, "/weeks/latest/allowance", gin.H{
		"date":  "2025-11-04",
		"items": []gin.H{{"calories": 1600}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, services.Allowance{Value: 2067, RemainingCalories: 12400, MissingDays: 6}, decode[services.Allowance](t, w))

	w = c.do(http.MethodPost, "/weeks/latest/allowance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 13600.0, decode[services.Allowance](t, w).RemainingCalories)

	// chunked request with no body at all
	req := httptest.NewRequest(http.MethodPost, "/weeks/latest/allowance", io.NopCloser(strings.NewReader("")))
	require.Equal(t, int64(-1), req.ContentLength)
	req.Header.Set("Authorization", "Bearer "+c.token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 13600.0, decode[services.Allowance](t, w).RemainingCalories)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/weeks/latest/allowance", "{").Code)

	w = c.do(http.MethodPost, "/weeks/latest/days/2025-11-04/plan", gin.H{"items": []gin.H{{"calories": 1700}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, -100.0, decode[services.DayPlan](t, w).Remaining.Calories)

	w = c.do(http.MethodPut, "/weeks/latest/days/2025-11-04/items", gin.H{"items": []gin.H{{"name": "a", "calories": 10}, {"name": "b", "calories": 20}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[models.Week](t, w).Days[1].Items, 2)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodDelete, "/weeks/latest/days/2025-11-04/items/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodDelete, "/weeks/latest/days/2025-11-04/items/first", nil).Code)
	w = c.do(http.MethodDelete, "/weeks/latest/days/2025-11-04/items/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b", decode[models.Week](t, w).Days[1].Items[0].Name)

	w = c.do(http.MethodPut, "/weeks/latest", gin.H{"start": "2025-11-10", "weekly": gin.H{"calories": 7000}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decode[models.Week](t, w)
	assert.Equal(t, "Cut", edited.Name)
	assert.Equal(t, models.NewDate(2025, time.November, 11), edited.Days[1].Items[0].Date)

	w = c.do(http.MethodGet, "/weeks/repeat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	draft := decode[services.WeekEdit](t, w)
	assert.Equal(t, models.NewDate(2025, time.November, 17), draft.Start)
	assert.Equal(t, services.ModeDaily, draft.Mode)

	w = c.do(http.MethodPost, "/weeks", draft)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/weeks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]models.Week](t, w)["weeks"], 2)
}

func TestFoodRoutes(t *testing.T) {
	r := newTestRouter(t, nil)
	c := signup(t, r, "oscar")
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/weeks", gin.H{"start": "2025-11-03", "weekly": gin.H{"calories": 7000}}).Code)

	type foodsResp struct {
		Foods []models.SavedFood `json:"foods"`
	}

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/foods", gin.H{"calories": 10}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/foods", gin.H{"name": "x"}).Code)

	w := c.do(http.MethodPost, "/foods", gin.H{"name": "Yogurt", "calories": 120, "protein": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = c.do(http.MethodPost, "/foods", gin.H{"name": "apple", "calories": 95})
	require.Equal(t, http.StatusCreated, w.Code)
	foods := decode[foodsResp](t, w).Foods
	require.Len(t, foods, 2)
	assert.Equal(t, "apple", foods[0].Name, "newest first")
	yogurt := foods[1]

	w = c.do(http.MethodPost, "/weeks/latest/days/2025-11-03/items", gin.H{"saved_food_id": yogurt.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Yogurt", decode[models.Week](t, w).Days[0].Items[0].Name)

	w = c.do(http.MethodPost, "/weeks/latest/days/2025-11-03/items", gin.H{"saved_food_id": yogurt.ID, "name": "Half yogurt", "calories": 60})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.Item{Date: models.NewDate(2025, time.November, 3), Name: "Half yogurt", Calories: 60, Protein: 10},
		decode[models.Week](t, w).Days[0].Items[0], "edited fields win over the template")

	w = c.do(http.MethodGet, "/foods?sort=used", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Yogurt", decode[foodsResp](t, w).Foods[0].Name)

	w = c.do(http.MethodGet, "/foods?q=APP", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[foodsResp](t, w).Foods, 1)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/foods?sort=newest", nil).Code)

	w = c.do(http.MethodPut, "/foods/"+yogurt.ID, gin.H{"name": "Greek yogurt", "calories": 130})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Greek yogurt", decode[foodsResp](t, w).Foods[1].Name)

	w = c.do(http.MethodDelete, "/foods/"+yogurt.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[foodsResp](t, w).Foods, 1)

	w = c.do(http.MethodPost, "/weeks/latest/days/2025-11-03/items", gin.H{"saved_food_id": yogurt.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackupRoutes(t *testing.T) {
	up := &testUploader{}
	r := newTestRouter(t, up)
	anon := &client{t: t, r: r}
	alice := signup(t, r, "alice")
	mallory := signup(t, r, "mallory")
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/weeks", gin.H{"start": "2025-11-03", "weekly": gin.H{"calories": 7000}}).Code)

	w := mallory.do(http.MethodGet, "/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[services.Snapshot](t, w)
	assert.Contains(t, snap, "mallory")
	assert.NotContains(t, snap, "alice", "export holds the caller only")

	t.Run("another user's entry is not imported", func(t *testing.T) {
		w := mallory.do(http.MethodPost, "/backup/import", services.Snapshot{"alice": {PIN: "0000"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = mallory.do(http.MethodPost, "/backup/import", services.Snapshot{
			"alice":   {PIN: "0000"},
			"mallory": {PIN: "5555"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "alice", "pin": "0000"}).Code)
		assert.Equal(t, http.StatusOK, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "alice", "pin": "1234"}).Code)
		assert.Equal(t, http.StatusOK, anon.do(http.MethodPost, "/auth/login", gin.H{"user": "mallory", "pin": "5555"}).Code)

		latest := alice.do(http.MethodGet, "/weeks/latest", nil)
		assert.Equal(t, http.StatusOK, latest.Code, "alice's week survives")
	})

	t.Run("own data round trips", func(t *testing.T) {
		w := alice.do(http.MethodGet, "/backup/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		own := decode[services.Snapshot](t, w)
		require.Len(t, own["alice"].Weeks, 1)

		fresh := own["alice"]
		fresh.Weeks = append(fresh.Weeks, fresh.Weeks[0])
		w = alice.do(http.MethodPost, "/backup/import", services.Snapshot{"alice": fresh})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		weeks := decode[map[string][]models.Week](t, alice.do(http.MethodGet, "/weeks", nil))
		assert.Len(t, weeks["weeks"], 2)
	})

	bad := services.Snapshot{"alice": {Name: "y"}}
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodPost, "/backup/import", bad).Code)

	w = alice.do(http.MethodPost, "/backup/s3", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, up.calls)

	disabled := newTestRouter(t, nil)
	d := signup(t, disabled, "oscar")
	assert.Equal(t, http.StatusServiceUnavailable, d.do(http.MethodPost, "/backup/s3", nil).Code)
}

func TestWebsocketRoute(t *testing.T) {
	r, hub := newTestRouterWithHub(t, nil)
	c := signup(t, r, "oscar")
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+c.token, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the handler registers right after the upgrade
	require.Eventually(t, func() bool { return hub.Connections("oscar") == 1 }, 2*time.Second, 10*time.Millisecond)

	w := c.do(http.MethodPost, "/weeks", gin.H{"start": "2025-11-03", "weekly": gin.H{"calories": 7000}})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, services.EventWeekUpdated, ev.Kind)
	assert.Contains(t, string(ev.Data), `"start":"2025-11-03"`)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections("oscar") == 0 }, 2*time.Second, 10*time.Millisecond)
}
