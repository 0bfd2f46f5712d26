package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/result-portal-api/internal/models"
)

func schoolID(claims *models.JWTClaims) string {
	if claims == nil || claims.SchoolID == nil {
		return ""
	}
	return *claims.SchoolID
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
