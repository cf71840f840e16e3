package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seo-writer/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	h.respondWithToken(c, http.StatusCreated, "User registered successfully", user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, message string, user *domain.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(status, TokenResponse{
		Message:     message,
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) logout(c *gin.Context) {
	if claims := currentClaims(c); claims != nil && claims.TokenID != "" {
		if err := h.revocations.Revoke(c.Request.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
			h.writeError(c, err, "")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
