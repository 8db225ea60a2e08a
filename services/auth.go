package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AdminFinder is the admin lookup the authenticator needs.
type AdminFinder interface {
	FindActiveByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// Identity is the admin identity embedded in a token.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Claims are the JWT claims issued on login.
type Claims struct {
	AdminID  uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	admins AdminFinder
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	logger zerolog.Logger
}

func NewAuthenticator(admins AdminFinder, cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		admins: admins,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
		logger: log.With().Str("service", "auth").Logger(),
	}
}

// Login checks username and password against the stored bcrypt hash and
// issues a signed token. Unknown, inactive and wrong-password logins all fail
// with the same 401 error.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, Identity, error) {
	admin, err := a.admins.FindActiveByUsername(ctx, username)
	if err != nil {
		if errs.IsNotFound(err) {
			a.logger.Warn().Str("username", username).Msg("login for unknown or inactive admin")
			return "", Identity{}, errs.NewInvalidCredentialsError()
		}
		return "", Identity{}, fmt.Errorf("find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		a.logger.Warn().Str("username", username).Msg("login with wrong password")
		return "", Identity{}, errs.NewInvalidCredentialsError()
	}

	identity := Identity{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		Name:     admin.Name,
	}
	token, err := a.issue(identity)
	if err != nil {
		return "", Identity{}, err
	}
	return token, identity, nil
}

func (a *Authenticator) issue(identity Identity) (string, error) {
	now := a.now()
	claims := Claims{
		AdminID:  identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Name:     identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(identity.ID), 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature, algorithm and expiry. A missing token is a 401,
// anything else wrong with it a 403.
func (a *Authenticator) Verify(tokenString string) (Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Identity{}, errs.NewMissingTokenError()
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			a.logger.Debug().Msg("expired token presented")
		}
		return Identity{}, errs.NewInvalidTokenError()
	}

	return Identity{
		ID:       claims.AdminID,
		Username: claims.Username,
		Email:    claims.Email,
		Name:     claims.Name,
	}, nil
}

// HashPassword returns the bcrypt hash stored in admins.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// AdminSeeder is the admin storage used at provisioning time.
type AdminSeeder interface {
	Count(ctx context.Context) (int64, error)
	Add(ctx context.Context, admin *models.Admin) error
}

// SeedAdmin inserts the configured admin when the admins table is empty. It
// reports whether a row was written.
func SeedAdmin(ctx context.Context, admins AdminSeeder, seed config.AdminSeed) (bool, error) {
	if seed.Username == "" || seed.Password == "" {
		return false, nil
	}

	count, err := admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := HashPassword(seed.Password)
	if err != nil {
		return false, err
	}

	email := seed.Email
	if email == "" {
		email = seed.Username + "@localhost"
	}
	admin := &models.Admin{
		Username: seed.Username,
		Email:    email,
		Password: hash,
		Name:     seed.Name,
		Active:   true,
	}
	if err := admins.Add(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
