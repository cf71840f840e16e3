package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seo-writer/internal/domain"
)

// settingsRequest accepts both the storefront-specific and the generic names
// for the store fields.
type settingsRequest struct {
	ShopifyURL      *string `json:"shopify_url"`
	StoreURL        *string `json:"store_url"`
	ShopifyToken    *string `json:"shopify_token"`
	StoreToken      *string `json:"store_token"`
	BrandName       *string `json:"brand_name"`
	BusinessType    *string `json:"business_type"`
	BrandGuidelines *string `json:"brand_guidelines"`
	ContentType     *string `json:"content_type"`
}

func (r settingsRequest) toUpdate() domain.SettingsUpdate {
	u := domain.SettingsUpdate{
		StoreURL:        r.StoreURL,
		StoreToken:      r.StoreToken,
		BrandName:       r.BrandName,
		BusinessType:    r.BusinessType,
		BrandGuidelines: r.BrandGuidelines,
		ContentType:     r.ContentType,
	}
	if r.ShopifyURL != nil {
		u.StoreURL = r.ShopifyURL
	}
	if r.ShopifyToken != nil {
		u.StoreToken = r.ShopifyToken
	}
	return u
}

type generateRequest struct {
	Keyword string `json:"keyword"`
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "No settings found")
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(*settings))
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	if _, err := h.settings.Upsert(c.Request.Context(), currentUserID(c), req.toUpdate()); err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword is required"})
		return
	}

	article, err := h.articles.Generate(c.Request.Context(), currentUserID(c), req.Keyword)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Article generated successfully",
		"article": articleToResponse(*article),
	})
}

func (h *Handler) listArticles(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "")
		return
	}

	resp := make([]ArticleResponse, len(articles))
	for i := range articles {
		resp[i] = articleToResponse(articles[i])
	}
	c.JSON(http.StatusOK, gin.H{"articles": resp})
}

func (h *Handler) getArticle(c *gin.Context) {
	article, err := h.articles.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, articleToResponse(*article))
}

func (h *Handler) publishArticle(c *gin.Context) {
	article, err := h.articles.Publish(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Article published successfully",
		"article": articleToResponse(*article),
	})
}
