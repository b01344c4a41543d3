package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"depo-backend/internal/config"
	"depo-backend/internal/database"
	"depo-backend/internal/models"
	"depo-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func newApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	database.DB = testutil.SetupTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret"}

	app := fiber.New()
	app.Post("/register-admin", RegisterAdminHandler(cfg))
	app.Post("/login", LoginHandler(cfg))
	p := app.Group("", JWTMiddleware(cfg))
	p.Get("/me", MeHandler())
	p.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, cfg
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	app, _ := newApp(t)
	admin := map[string]string{"name": "Yönetici", "email": " Admin@Depo.Local ", "password": "gizli123"}

	status, body := call(t, app, http.MethodPost, "/register-admin", "", admin)
	if status != http.StatusCreated || body["email"] != "admin@depo.local" || body["department"] != "stock" {
		t.Fatalf("status=%d body=%v", status, body)
	}
	if status, _ := call(t, app, http.MethodPost, "/register-admin", "", admin); status != http.StatusForbidden {
		t.Fatalf("second register status = %d", status)
	}

	bad := map[string]string{"name": "X", "email": "x@depo.local", "password": "p", "department": "muhasebe"}
	if status, _ := call(t, app, http.MethodPost, "/register-admin", "", bad); status != http.StatusBadRequest {
		t.Fatalf("bad department status = %d", status)
	}
}

func TestLoginAndMe(t *testing.T) {
	app, _ := newApp(t)
	call(t, app, http.MethodPost, "/register-admin", "", map[string]string{
		"name": "Yönetici", "email": "admin@depo.local", "password": "gizli123", "department": "production",
	})

	if status, _ := call(t, app, http.MethodPost, "/login", "", map[string]string{"email": "admin@depo.local", "password": "yanlis"}); status != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", status)
	}
	status, body := call(t, app, http.MethodPost, "/login", "", map[string]string{"email": "ADMIN@depo.local", "password": "gizli123"})
	if status != http.StatusOK {
		t.Fatalf("login status=%d body=%v", status, body)
	}
	token := body["token"].(string)

	status, body = call(t, app, http.MethodGet, "/me", token, nil)
	if status != http.StatusOK || body["role"] != "admin" || body["department"] != "production" {
		t.Fatalf("me status=%d body=%v", status, body)
	}
	if status, _ := call(t, app, http.MethodGet, "/admin-only", token, nil); status != http.StatusOK {
		t.Fatalf("admin route status = %d", status)
	}

	// Departman token'da taşınmaz; /me her zaman güncel kaydı okur
	claims := &JWTCustomClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatal(err)
	}
	if claims.UserID == 0 || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", claims.UserID).Update("department", "screenprint").Error; err != nil {
		t.Fatal(err)
	}
	if _, body := call(t, app, http.MethodGet, "/me", token, nil); body["department"] != "screenprint" {
		t.Fatalf("me after department change = %v", body)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	app, cfg := newApp(t)

	if status, _ := call(t, app, http.MethodGet, "/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/me", "not-a-jwt", nil); status != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", status)
	}

	other, err := GenerateToken("baska-bir-anahtar", &models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if status, _ := call(t, app, http.MethodGet, "/me", other, nil); status != http.StatusUnauthorized {
		t.Fatalf("foreign signature status = %d", status)
	}

	op := testutil.CreateUser(t, database.DB, "stock")
	token, err := GenerateToken(cfg.JWTSecret, &op)
	if err != nil {
		t.Fatal(err)
	}
	if status, _ := call(t, app, http.MethodGet, "/admin-only", token, nil); status != http.StatusForbidden {
		t.Fatalf("operator on admin route status = %d", status)
	}
}
