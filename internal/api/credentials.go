package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pattern-scanner/internal/auth"
	"pattern-scanner/internal/vault"
)

type credentialsRequest struct {
	Exchange  string `json:"exchange" binding:"required"`
	APIKey    string `json:"api_key" binding:"required"`
	SecretKey string `json:"secret_key" binding:"required"`
}

// handleStoreCredentials stores exchange API credentials for the caller
// POST /api/credentials
func (s *Server) handleStoreCredentials(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	creds := vault.Credentials{
		APIKey:    req.APIKey,
		SecretKey: req.SecretKey,
		Exchange:  req.Exchange,
	}
	if err := s.vault.StoreCredentials(c.Request.Context(), userID, creds); err != nil {
		s.logger.Error("Failed to store credentials", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exchange": req.Exchange, "stored": true})
}

// handleGetCredentials returns the caller's stored credentials with the
// secret masked
// GET /api/credentials/:exchange
func (s *Server) handleGetCredentials(c *gin.Context) {
	userID := auth.GetUserID(c)
	exchange := c.Param("exchange")

	creds, err := s.vault.GetCredentials(c.Request.Context(), userID, exchange)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "credentials not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exchange":   creds.Exchange,
		"api_key":    creds.APIKey,
		"secret_key": maskSecret(creds.SecretKey),
	})
}

// handleDeleteCredentials removes the caller's stored credentials
// DELETE /api/credentials/:exchange
func (s *Server) handleDeleteCredentials(c *gin.Context) {
	userID := auth.GetUserID(c)
	exchange := c.Param("exchange")

	if err := s.vault.DeleteCredentials(c.Request.Context(), userID, exchange); err != nil {
		s.logger.Error("Failed to delete credentials", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exchange": exchange, "deleted": true})
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
