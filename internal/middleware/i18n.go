// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := "en"

		// Handle cases like "ru-RU,ru;q=0.9,en;q=0.8"
		if header := c.GetHeader("Accept-Language"); header != "" {
			first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
			switch strings.ToLower(first) {
			case "ru", "ru-ru", "ru_ru":
				lang = "ru"
			}
		}
		if q := c.Query("lang"); q == "ru" || q == "en" {
			lang = q
		}

		c.Set("lang", lang)
		c.Next()
	}
}
