package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/domain"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{Secret: "test-secret", Issuer: "campus-assistant", ExpiresIn: time.Hour}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	cfg := testJWTConfig()
	user := &domain.User{ID: 12, Email: "budi@kampus.ac.id", Nama: "Budi"}

	token, err := GenerateJWT(user, cfg)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := validateJWT(token, cfg.Secret, cfg.Issuer)
	if err != nil {
		t.Fatalf("validateJWT() error = %v", err)
	}
	if claims.Subject != "12" {
		t.Errorf("subject = %q, want %q", claims.Subject, "12")
	}
	if claims.Email != user.Email || claims.Name != user.Nama {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Hour

	token, _ := GenerateJWT(&domain.User{ID: 1}, cfg)
	if _, err := validateJWT(token, cfg.Secret, cfg.Issuer); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateJWTRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := GenerateJWT(&domain.User{ID: 1}, cfg)
	if _, err := validateJWT(token, cfg.Secret, "someone-else"); err == nil {
		t.Error("wrong issuer accepted")
	}
}

func TestValidateJWTRejectsTamperedSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := GenerateJWT(&domain.User{ID: 1}, cfg)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, err := validateJWT(tampered, cfg.Secret, cfg.Issuer); err == nil {
		t.Error("tampered signature accepted")
	}
}

func TestJWTMiddlewareInjectsUserContext(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := GenerateJWT(&domain.User{ID: 12, Email: "budi@kampus.ac.id", Nama: "Budi"}, cfg)

	app := fiber.New()
	app.Get("/me", JWTMiddleware(cfg), func(c fiber.Ctx) error {
		uc := GetUserContext(c)
		if uc == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if uc.UserID != 12 {
			t.Errorf("UserID = %d, want 12", uc.UserID)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JWTMiddleware(testJWTConfig()), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestJWTMiddlewareAcceptsQueryToken(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := GenerateJWT(&domain.User{ID: 5}, cfg)

	app := fiber.New()
	app.Get("/me", JWTMiddleware(cfg), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me?token="+token, nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
