package handlers

import (
	"backend/models"
	"backend/storage"
	"backend/utils"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// normalizeAuthHeader strips an optional Bearer scheme so the same credential
// string works on every route whether or not the client sends the prefix.
func normalizeAuthHeader(header string) string {
	header = strings.TrimSpace(header)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// sessionIDFromToken verifies an access token and returns the session id
// bound into its claims.
func sessionIDFromToken(tokenStr string) (string, error) {
	parsedToken, err := utils.ValidateJWT(tokenStr)
	if err != nil {
		return "", err
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sessionID, ok := claims["sessionId"].(string)
	if !ok || sessionID == "" {
		return "", errors.New("token is not bound to a session")
	}
	return sessionID, nil
}

// GetSessionDetails resolves the Authorization header to the salesperson
// behind it. Every protected handler calls this first.
func GetSessionDetails(db *sql.DB, authHeader string) (*models.SalesUser, error) {
	sessionID := normalizeAuthHeader(authHeader)
	if sessionID == "" {
		return nil, errors.New("missing session id")
	}
	return storage.GetUserBySessionID(db, sessionID)
}

// LoginHandler handles console authentication
// @Summary Login user
// @Description Authenticate a salesperson and create a server-side session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		// One generic message for every failure mode: unknown username, wrong
		// password, or deactivated account. Nothing leaks which one it was.
		user, err := storage.GetUserByUsername(db, loginData.Username)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) || !user.Activo {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario o contraseña incorrectos"})
			return
		}

		sessionID := uuid.NewString()

		token, err := utils.GenerateJWT(user.Username, sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		session := &models.Session{
			UserID:    user.ID,
			SessionID: sessionID,
			HostName:  user.Username,
			IPAddress: loginData.IP,
			Timestamp: time.Now(),
			ExpiresAt: time.Now().Add(utils.SessionTTL),
		}

		if err := storage.SaveSession(db, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session", "details": err.Error()})
			return
		}

		user.Password = ""
		c.JSON(http.StatusOK, models.LoginResponse{
			Message:     "Login successful",
			AccessToken: token,
			SessionID:   sessionID,
			ExpiresIn:   int(utils.SessionTTL / time.Second),
			User:        *user,
		})
	}
}

// ValidateSession verifies a Bearer access token and returns the salesperson
// @Summary Validate session
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.SalesUser
// @Failure 401 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := normalizeAuthHeader(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Authorization header"})
			return
		}

		// The token carries the session id; checking the claim against the
		// session table catches both a forged token and a logged-out session.
		sessionID, err := sessionIDFromToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Session valid",
			"user":    user,
		})
	}
}

// LogoutHandler deletes the caller's session row
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Success 200 {object} utils.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := normalizeAuthHeader(c.GetHeader("Authorization"))
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID"})
			return
		}

		if err := storage.DeleteSessionByID(db, sessionID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to logout", "details": err.Error()})
			return
		}

		utils.SuccessResponse(c, "Logged out", http.StatusOK)
	}
}
