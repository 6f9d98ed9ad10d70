package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/appctx"
	"github.com/medvisor/sanatoria_backend/models"
)

// LocaleMiddleware resolves the request locale from ?locale= or the
// X-Locale header. Defaults to ru; anything other than ru/en is a client
// error (422), matching the bilingual content model.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("locale")
		if raw == "" {
			raw = c.GetHeader("X-Locale")
		}
		if raw == "" {
			raw = string(models.LocaleRu)
		}

		locale := models.Locale(raw)
		if !locale.Valid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported locale, expected ru or en"})
			c.Abort()
			return
		}

		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyLocale, string(locale))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
