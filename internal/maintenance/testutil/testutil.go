// Package testutil provides shared helpers for handler and service tests:
// a throwaway sqlite database, seeded users and requests, and an HTTP
// harness wired exactly like the production router.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/config"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/handler"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/service"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/middleware"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-secret-key"

// NewTestDB opens a file-backed sqlite database in a per-test temp dir and
// migrates the full schema. The file goes away with the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "demandas.sqlite")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.MaintenanceRequest{},
		&entity.RequestHistory{},
		&entity.EmailConfig{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// NewTestConfig returns a config suitable for tests: fixed secret, short
// token lifetimes, no external services.
func NewTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             TestJWTSecret,
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
			Issuer:             "demandas-test",
		},
	}
}

// NewTestServices wires the service layer against db with no redis client;
// notifications degrade to log-only.
func NewTestServices(t *testing.T, db *gorm.DB) *service.Services {
	t.Helper()
	repos := repository.NewRepositories(db)
	return service.NewServices(db, repos, nil, NewTestConfig(), zap.NewNop())
}

// SetupRouter builds a gin engine with the production request/user/auth
// routes mounted under /api/v1, backed by db.
func SetupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repos := repository.NewRepositories(db)
	services := NewTestServices(t, db)
	handlers := handler.NewHandlers(services, handler.NewEmailConfigHandler(repos.EmailConfig))

	r := gin.New()
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", handlers.Auth.Login)
	auth.POST("/refresh", handlers.Auth.RefreshToken)

	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(TestJWTSecret))

	authorized.GET("/auth/me", handlers.Auth.GetCurrentUser)
	authorized.POST("/auth/logout", handlers.Auth.Logout)

	users := authorized.Group("/users")
	users.GET("", handlers.User.List)
	users.GET("/:id", handlers.User.Get)

	requests := authorized.Group("/requests")
	requests.POST("", handlers.Request.Create)
	requests.GET("", handlers.Request.List)
	requests.GET("/board", handlers.Request.Board)
	requests.GET("/dashboard", handlers.Request.Dashboard)
	requests.GET("/:id", handlers.Request.Get)
	requests.GET("/:id/history", handlers.Request.History)
	for _, action := range workflow.Actions() {
		requests.POST("/:id/"+string(action), handlers.Request.Transition(action))
	}

	emailConfigs := authorized.Group("/email-configs")
	emailConfigs.Use(middleware.RequireRole(entity.RoleManagerMaint))
	emailConfigs.GET("", handlers.EmailConfig.List)
	emailConfigs.PUT("", handlers.EmailConfig.Upsert)

	return r
}

// GenerateTestToken signs an access token for user with the test secret.
func GenerateTestToken(t *testing.T, user *entity.User) string {
	t.Helper()

	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    "demandas-test",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

// SeedUser inserts an active user with the given role. Username doubles as
// the HMC badge to keep both unique columns distinct across seeds.
func SeedUser(t *testing.T, db *gorm.DB, username, role string) *entity.User {
	t.Helper()

	hash, err := service.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash seed password: %v", err)
	}

	user := &entity.User{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		HMC:          "HMC-" + username,
		Role:         role,
		PasswordHash: hash,
		Status:       "active",
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// SeedRequest inserts a request owned by requesterID at the given status.
func SeedRequest(t *testing.T, db *gorm.DB, requesterID uint, status string) *entity.MaintenanceRequest {
	t.Helper()

	req := &entity.MaintenanceRequest{
		Title:              "Bearing noise on conveyor 3",
		ProblemDescription: "Grinding noise under load, likely worn bearing",
		Process:            "Stamping",
		Equipment:          "Conveyor 3",
		GutGravity:         4,
		GutUrgency:         3,
		GutTendency:        5,
		Status:             status,
		RequesterID:        requesterID,
	}
	if err := db.Create(req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return req
}

// DoRequest performs one HTTP call against the test router. A non-empty
// token is sent as a bearer token; a nil body sends an empty request.
func DoRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse decodes the standard response envelope from w.
func ParseResponse(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()

	var resp handler.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return resp
}
