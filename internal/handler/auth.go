package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel comparisons against repository errors
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/brian/tmov-booking/internal/config"     // app configuration
    "github.com/brian/tmov-booking/internal/repository" // DB repositories
    "github.com/brian/tmov-booking/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for member auth endpoints.
type AuthHandler struct {
    Cfg     config.Config
    Members repository.MemberStore
}

func NewAuthHandler(cfg config.Config, m repository.MemberStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Members: m}
}

// ----- DTOs -----

type registerReq struct {
    Email       string `json:"email"`
    DisplayName string `json:"display_name"`
    Password    string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type memberPart struct {
    ID          uint64 `json:"id"`
    Email       string `json:"email"`
    DisplayName string `json:"display_name"`
}
type authResp struct {
    Member  memberPart `json:"member"`
    Token   string     `json:"token"`
    Expires time.Time  `json:"expires"`
}

// Register: create member and return an access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }
    if req.DisplayName == "" {
        req.DisplayName = req.Email
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Members.Create(ctx, req.Email, req.DisplayName, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        Member:  memberPart{ID: id, Email: req.Email, DisplayName: req.DisplayName},
        Token:   access.Token,
        Expires: access.Exp,
    })
}

// Login: verify credentials and return a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    m, err := h.Members.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrMemberNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(m.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, m.ID, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        Member:  memberPart{ID: m.ID, Email: m.Email, DisplayName: m.DisplayName},
        Token:   access.Token,
        Expires: access.Exp,
    })
}

// Me returns the authenticated member's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    m, err := h.Members.GetByID(ctx, memberID)
    if err != nil {
        if errors.Is(err, repository.ErrMemberNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, memberPart{ID: m.ID, Email: m.Email, DisplayName: m.DisplayName})
}
