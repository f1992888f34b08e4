package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextIdentityKey stores the full services.Identity inside Gin context.
	ContextIdentityKey = "identity"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (services.Identity, error)
}

// JWTVerifier accepts HS256 tokens signed with Secret carrying the user id in "sub".
type JWTVerifier struct {
	Secret string
}

func (v JWTVerifier) Verify(_ context.Context, token string) (services.Identity, error) {
	claims, err := utils.ParseToken(v.Secret, token)
	if err != nil {
		return services.Identity{}, err
	}
	return services.Identity{UserID: claims.Subject, DisplayName: claims.Name, Email: claims.Email}, nil
}

// FirebaseVerifier checks Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase app. credentialsFile may be empty to use
// application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := app.Auth(initCtx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (services.Identity, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	t, err := v.client.VerifyIDToken(verifyCtx, token)
	if err != nil {
		return services.Identity{}, err
	}
	if t.UID == "" {
		return services.Identity{}, errors.New("token missing user ID")
	}
	id := services.Identity{UserID: t.UID}
	if name, ok := t.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if email, ok := t.Claims["email"].(string); ok {
		id.Email = email
	}
	if pic, ok := t.Claims["picture"].(string); ok {
		id.PhotoURL = pic
	}
	return id, nil
}

// AuthRequired ensures the request carries a valid bearer token.
func AuthRequired(v TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		id, err := v.Verify(ctx.Request.Context(), tokenString)
		if err != nil {
			utils.Sugar.Debugw("token rejected", "error", err)
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, id.UserID)
		ctx.Set(ContextIdentityKey, id)
		ctx.Next()
	}
}

// ProfileEnsurer creates the caller's profile on first sign-in.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id services.Identity) (models.UserProfile, error)
}

// EnsureProfile runs after AuthRequired so every protected handler sees an existing profile.
func EnsureProfile(p ProfileEnsurer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		v, ok := ctx.Get(ContextIdentityKey)
		id, isIdentity := v.(services.Identity)
		if !ok || !isIdentity {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			ctx.Abort()
			return
		}
		if _, err := p.Ensure(ctx.Request.Context(), id); err != nil {
			utils.Sugar.Errorw("ensure profile failed", "user_id", id.UserID, "error", err)
			if errors.Is(err, models.ErrUnavailable) {
				utils.Error(ctx, http.StatusServiceUnavailable, 50312, "profile store unavailable")
			} else {
				utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load profile")
			}
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
