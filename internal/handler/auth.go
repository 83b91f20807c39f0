package handler

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/emergid/emergency-medical-id/internal/config"
	"github.com/emergid/emergency-medical-id/internal/middleware"
	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/repository"
	"github.com/emergid/emergency-medical-id/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	RDB   *redis.Client // optional; enables token revocation on logout
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rdb *redis.Client) *AuthHandler {
	if u == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: u, RDB: rdb}
}

// ----- DTOs -----

type registerReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`       // patient | doctor, defaults to patient
	DoctorCode string `json:"doctorCode"` // required when role=doctor
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userPart struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates an account. Doctor accounts additionally require the
// configured doctor code; without it registration fails with 403 and no
// user is created.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "email and password required")
	}
	if len(req.Password) < h.Cfg.MinPwLen {
		return fail(c, http.StatusBadRequest, model.CodeWeakPassword, "password too short")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RolePatient
	}
	if role != model.RolePatient && role != model.RoleDoctor {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "unknown role")
	}
	if role == model.RoleDoctor &&
		subtle.ConstantTimeCompare([]byte(req.DoctorCode), []byte(h.Cfg.DoctorCode)) != 1 {
		return fail(c, http.StatusForbidden, model.CodeInvalidDoctorCode, "invalid doctor code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Email, req.Password, role, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusBadRequest, model.CodeDuplicateEmail, "email already exists")
		}
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "create user failed")
	}

	log.Printf("user registered: %s (%s)", req.Email, role)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "account created"})
}

// Login verifies credentials and returns a signed bearer token. Unknown
// email and wrong password produce byte-identical responses so the endpoint
// does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "email and password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, model.CodeInvalidCreds, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, model.CodeInvalidCreds, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.TokenTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeInternal, "issue token failed")
	}

	log.Printf("user logged in: %s", u.Email)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   access.Token,
		"expires": access.Exp,
		"user":    userPart{Email: u.Email, Role: u.Role},
	})
}

// Logout revokes the presented token for its remaining lifetime when Redis
// is configured. Without Redis the token stays technically valid until
// expiry and logout is purely client-side; that fallback matches the
// original single-token session model.
func (h *AuthHandler) Logout(c echo.Context) error {
	jti, _ := c.Get("jti").(string)
	exp, _ := c.Get("token_exp").(time.Time)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := middleware.RevokeToken(ctx, h.RDB, jti, exp); err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the verified identity attached by the middleware. The
// dashboards call it on load to check whether the stored token is usable.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
		"email":   c.Get("email"),
	})
}
