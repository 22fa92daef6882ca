package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/config"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	ids         *idgen.Generator
	tokens      *TokenIssuer
	logger      *zap.Logger
	userAPI     string
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, ids *idgen.Generator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:      db,
		ids:     ids,
		tokens:  NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		logger:  logger.Named("auth"),
		userAPI: DiscordUserAPI,
	}
}

func (h *AuthHandler) Tokens() *TokenIssuer {
	return h.tokens
}

// AuthInput carries the credentials of a request. Either header may hold the token.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	Cookie        string `header:"Cookie" doc:"auth_token cookie"`
}

// Token returns the bearer token, falling back to the auth cookie.
func (in AuthInput) Token() string {
	if scheme, token, ok := strings.Cut(in.Authorization, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if in.Cookie == "" {
		return ""
	}
	cookies, err := http.ParseCookie(in.Cookie)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

// Authorize resolves the acting user from the request credentials.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (uint, error) {
	user, err := h.resolve(ctx, in.Token())
	if err != nil {
		return 0, apperr.ToHuma(err)
	}
	return user.ID, nil
}

func (h *AuthHandler) resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	userID, _, err := h.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated("could not validate credentials")
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("could not validate credentials")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("inactive user")
	}
	return &user, nil
}

type UserResponse struct {
	ID        idgen.ID  `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        idgen.ID(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Avatar:    u.Avatar,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type MeOutput struct {
	Body UserResponse
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	user, err := h.resolve(ctx, input.Token())
	if err != nil {
		return nil, apperr.ToHuma(err)
	}
	return &MeOutput{Body: NewUserResponse(user)}, nil
}

type RegisterInput struct {
	Body struct {
		Email    string `json:"email" format:"email" maxLength:"255" doc:"Email address"`
		Username string `json:"username" minLength:"3" maxLength:"50" doc:"Unique user name"`
		Password string `json:"password" minLength:"6" maxLength:"72" doc:"Password"`
		FullName string `json:"full_name,omitempty" maxLength:"100" doc:"Display name"`
	}
}

type RegisterOutput struct {
	Body UserResponse
}

func (h *AuthHandler) HandleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))
	username := strings.TrimSpace(input.Body.Username)
	if len(username) < 3 {
		return nil, huma.Error400BadRequest("username must be at least 3 characters")
	}
	if len(input.Body.Password) < 6 {
		return nil, huma.Error400BadRequest("password must be at least 6 characters")
	}

	hash, err := HashPassword(input.Body.Password)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid password")
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.Body.FullName),
		IsActive:     true,
	}
	user.ID = h.ids.Next()

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return apperr.Persistence("failed to check email", err)
		}
		if taken > 0 {
			return apperr.Validation("email already registered")
		}
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return apperr.Persistence("failed to check username", err)
		}
		if taken > 0 {
			return apperr.Validation("username already taken")
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperr.Persistence("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.ToHuma(err)
	}

	h.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return &RegisterOutput{Body: NewUserResponse(&user)}, nil
}

type LoginInput struct {
	Body struct {
		Username string `json:"username" doc:"User name"`
		Password string `json:"password" doc:"Password"`
	}
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      TokenResponse
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	var user models.User
	err := h.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(input.Body.Username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ToHuma(apperr.Persistence("failed to load user", err))
	}
	if err != nil || user.PasswordHash == "" || !CheckPassword(user.PasswordHash, input.Body.Password) {
		return nil, huma.Error401Unauthorized("incorrect username or password")
	}
	if !user.IsActive {
		return nil, huma.Error400BadRequest("inactive user")
	}

	token, expires, err := h.tokens.Issue(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to generate token")
	}

	return &LoginOutput{
		SetCookie: h.cookie(token, expires),
		Body: TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   expires,
		},
	}, nil
}

func (h *AuthHandler) cookie(token string, expires time.Time) http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}
