package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"seo-writer/internal/auth"
	"seo-writer/internal/domain"
	"seo-writer/internal/generator"
	"seo-writer/internal/repository"
	"seo-writer/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	settings    service.SettingsService
	articles    service.ArticleService
	tokens      *auth.TokenManager
	revocations auth.Revocations
	logger      *logrus.Logger
}

func NewHandler(
	users service.UserService,
	settings service.SettingsService,
	articles service.ArticleService,
	tokens *auth.TokenManager,
	revocations auth.Revocations,
	logger *logrus.Logger,
) *Handler {
	if revocations == nil {
		revocations = auth.NoopRevocations{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       users,
		settings:    settings,
		articles:    articles,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", h.authMiddleware(), h.me)
		authGroup.POST("/logout", h.authMiddleware(), h.logout)

		services := api.Group("/services", h.authMiddleware())
		services.GET("/settings", h.getSettings)
		services.POST("/settings", h.updateSettings)
		services.POST("/generate", h.generate)
		services.GET("/articles", h.listArticles)
		services.GET("/articles/:id", h.getArticle)
		services.POST("/articles/:id/publish", h.publishArticle)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// writeError maps service and repository errors onto status codes.
func (h *Handler) writeError(c *gin.Context, err error, notFound string) {
	var status int
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	case errors.Is(err, service.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrSettingsRequired), service.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, generator.ErrGeneration):
		status = http.StatusInternalServerError
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type UserResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	SubscriptionStatus string `json:"subscription_status"`
	CreatedAt          string `json:"created_at"`
}

type TokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type SettingsResponse struct {
	ShopifyURL      string `json:"shopify_url"`
	BrandName       string `json:"brand_name"`
	BusinessType    string `json:"business_type"`
	BrandGuidelines string `json:"brand_guidelines"`
	ContentType     string `json:"content_type"`
	UpdatedAt       string `json:"updated_at"`
}

type ArticleResponse struct {
	ID          string  `json:"id"`
	Keyword     string  `json:"keyword"`
	Content     string  `json:"content"`
	HTMLContent string  `json:"html_content"`
	Research    string  `json:"research"`
	CreatedAt   string  `json:"created_at"`
	Published   bool    `json:"published"`
	PublishURL  *string `json:"publish_url"`
	PublishedAt *string `json:"published_at"`
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		SubscriptionStatus: u.SubscriptionStatus,
		CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func settingsToResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		ShopifyURL:      s.StoreURL,
		BrandName:       s.BrandName,
		BusinessType:    s.BusinessType,
		BrandGuidelines: s.BrandGuidelines,
		ContentType:     s.ContentType,
		UpdatedAt:       s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func articleToResponse(a domain.Article) ArticleResponse {
	resp := ArticleResponse{
		ID:          a.ID,
		Keyword:     a.Keyword,
		Content:     a.Content,
		HTMLContent: a.HTMLContent(),
		Research:    a.Research,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		Published:   a.Published,
		PublishURL:  a.PublishURL,
	}
	if a.PublishedAt != nil {
		v := a.PublishedAt.UTC().Format(time.RFC3339)
		resp.PublishedAt = &v
	}
	return resp
}
