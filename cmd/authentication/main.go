// This is a **mock authentication service**, issuing the JWTs the back-office
// accepts so that an account can be impersonated during development.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/karirconnect/backoffice/internal/company/auth"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
	tokenTTL      = 24 * time.Hour
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tokenHandler signs a token for ?user_id=N and also sets it as the session
// cookie, so a browser can follow the redirect straight into the admin area.
func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID == 0 {
			http.Error(w, "user_id must be a positive integer", http.StatusBadRequest)
			return
		}

		token, err := auth.GenerateToken(uint(userID), secret, tokenTTL)
		if err != nil {
			logger.Error("failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		expires := time.Now().Add(tokenTTL)
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TokenResponse{Token: token, ExpiresAt: expires}); err != nil {
			logger.Error("failed to encode token", zap.Error(err))
		}
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}
	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/token", tokenHandler(secret, logger))

	logger.Info("Authentication service running", zap.String("port", port))
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("authentication service stopped", zap.Error(err))
	}
}
