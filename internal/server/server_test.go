package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notetrack-be/internal/bootstrap"
	"notetrack-be/internal/config"
	"notetrack-be/internal/controller"
	"notetrack-be/internal/handler"
	"notetrack-be/internal/model"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/pkg/mailer"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/repository/lock"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/internal/service"
	internalWS "notetrack-be/internal/websocket"
	"notetrack-be/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const jwtSecret = "server-test-secret"

type apiHarness struct {
	app   *fiber.App
	user  *model.User
	other *model.User
	admin *model.User
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.NewGormConfig(gormlogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db, true))

	h := &apiHarness{}
	for _, u := range []**model.User{&h.user, &h.other, &h.admin} {
		*u = &model.User{Id: uuid.New(), Email: uuid.NewString() + "@example.com", FullName: "Test User", Role: "user"}
	}
	h.admin.Role = "admin"
	require.NoError(t, db.Create([]*model.User{h.user, h.other, h.admin}).Error)

	log := logger.NewNopLogger()
	factory := unitofwork.NewRepositoryFactory(db)
	publisher := service.NewNopPublisherService()
	userNames, err := memory.NewUserNameCache(16)
	require.NoError(t, err)

	notes := service.NewNoteService(factory, publisher, log)
	stages := service.NewStageService(factory, memory.NewStageCache(time.Minute), publisher, log)
	audit := service.NewAuditService(factory, userNames, log)
	deadline := service.NewDeadlineService(factory, mailer.NewLogSender(log), lock.NewLocalSweepLock(), service.DeadlineOptions{}, log)

	container := &bootstrap.Container{
		NoteController:         controller.NewNoteController(notes),
		StageController:        controller.NewStageController(stages),
		AuditController:        controller.NewAuditController(audit),
		NotificationController: controller.NewNotificationController(deadline),
		FeedHandler:            handler.NewFeedHandler(internalWS.NewHub(nil, log), jwtSecret, "admin", log),
		Auth:                   serverutils.NewJwtMiddleware(jwtSecret, "admin"),
		Logger:                 log,
	}
	cfg := &config.Config{App: config.AppConfig{CorsAllowedOrigins: "http://localhost:5173"}}
	h.app = New(cfg, container).GetApp()
	return h
}

func (h *apiHarness) do(t *testing.T, as *model.User, method, path string, body interface{}) (int, serverutils.BaseResponse[json.RawMessage]) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": as.Id.String(),
			"role":    as.Role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(jwtSecret))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out serverutils.BaseResponse[json.RawMessage]
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func decodeData[T any](t *testing.T, res serverutils.BaseResponse[json.RawMessage]) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v))
	return v
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(t, nil, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, h.user, http.MethodPost, "/api/stages/seed", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, res := h.do(t, h.admin, http.MethodPost, "/api/stages/seed", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, decodeData[struct{ Created int }](t, res).Created)

	status, res = h.do(t, h.user, http.MethodGet, "/api/stages/default", nil)
	require.Equal(t, http.StatusOK, status)
	defaultStage := decodeData[struct {
		Id   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}](t, res)
	assert.Equal(t, "To Do", defaultStage.Name)

	status, res = h.do(t, h.user, http.MethodPost, "/api/notes", map[string]interface{}{
		"title": "A", "body": "B", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, status)
	noteId := decodeData[struct {
		Id uuid.UUID `json:"id"`
	}](t, res).Id

	status, res = h.do(t, h.user, http.MethodGet, "/api/notes/"+noteId.String(), nil)
	require.Equal(t, http.StatusOK, status)
	note := decodeData[struct {
		StageId  *uuid.UUID `json:"stage_id"`
		Priority string     `json:"priority"`
	}](t, res)
	require.NotNil(t, note.StageId)
	assert.Equal(t, defaultStage.Id, *note.StageId)
	assert.Equal(t, "high", note.Priority)

	status, _ = h.do(t, h.other, http.MethodPut, "/api/notes/"+noteId.String(), map[string]interface{}{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)

	status, res = h.do(t, h.user, http.MethodGet, "/api/audit?note_id="+noteId.String(), nil)
	require.Equal(t, http.StatusOK, status)
	logs := decodeData[struct {
		Total int64 `json:"total"`
	}](t, res)
	assert.Equal(t, int64(1), logs.Total)

	status, _ = h.do(t, h.user, http.MethodDelete, "/api/notes/"+noteId.String(), nil)
	require.Equal(t, http.StatusOK, status)

	status, res = h.do(t, h.user, http.MethodGet, "/api/notes/"+noteId.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "note not found", res.Message)

	status, res = h.do(t, h.user, http.MethodGet, "/api/notes/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), decodeData[struct {
		Total int64 `json:"total"`
	}](t, res).Total)
}

func TestRequestValidationOverHTTP(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, nil, http.MethodGet, "/api/notes", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, res := h.do(t, h.user, http.MethodPost, "/api/notes", map[string]interface{}{"body": "no title"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res.Message, "Title is required")

	status, _ = h.do(t, h.user, http.MethodGet, "/api/notes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, h.user, http.MethodGet, "/api/notes?context_type=widget", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, h.user, http.MethodPut, "/api/notifications/preferences", map[string]interface{}{
		"enabled": true, "days_ahead": 45,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFeedHandshake(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, nil, http.MethodGet, "/api/ws", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(t, nil, http.MethodGet, "/api/ws?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// A valid token without the upgrade headers is refused, not served as JSON.
	status, _ = h.do(t, h.user, http.MethodGet, "/api/ws", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
