package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/draftkeeper/backend/internal/sessions"
	"github.com/draftkeeper/backend/internal/users"
	"github.com/draftkeeper/backend/pkg/logger"
	"github.com/draftkeeper/backend/pkg/middleware"
)

// UpdateUserRequest is the profile-sync payload. The frontend sends the
// Firebase uid under "id"; "externalId" is accepted as an alias.
type UpdateUserRequest struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	usersSvc *users.Service
}

func NewAuthHandler(u *users.Service) *AuthHandler {
	return &AuthHandler{usersSvc: u}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/update-user", h.UpdateUser)
	a.GET("/user", h.CurrentUser)
	a.POST("/logout", h.Logout)
}

// UpdateUser persists the caller's profile. This is the write half of the
// two-phase identity: the auth middleware resolves without creating, and this
// endpoint performs the actual upsert (first login lands here).
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := users.Claims{
		UID:     req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Picture: req.Picture,
	}
	if claims.UID == "" {
		claims.UID = req.ExternalID
	}
	if ident, ok := middleware.Identity(c); ok && claims.UID == "" {
		claims.UID = ident.Claims.UID
	}

	u, err := h.usersSvc.SyncProfile(c.Request.Context(), claims)
	if err != nil {
		logger.Errorf("update user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"picture": u.Picture,
	})
}

// CurrentUser returns the caller's profile. Before the first profile sync the
// identity is ephemeral and id is null.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if ident.Persisted() {
		c.JSON(http.StatusOK, gin.H{
			"id":      ident.User.ID,
			"name":    ident.User.Name,
			"email":   ident.User.Email,
			"picture": ident.User.Picture,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      nil,
		"name":    ident.Claims.Name,
		"email":   ident.Claims.Email,
		"picture": ident.Claims.Picture,
	})
}

// Logout blacklists the presented access token until its expiry so it cannot
// be replayed. Firebase sessions are otherwise stateless, so this is all the
// server-side logout there is.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.AccessToken(c); token != "" {
		if exp, err := sessions.TokenExpiry(token); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := sessions.BlacklistAccessToken(c.Request.Context(), token, ttl); err != nil {
					logger.Warnf("failed to blacklist access token: %v", err)
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
