package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for bad signatures, malformed payloads, and
	// claim sets missing required fields.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrIncompleteClaims is returned when issuance is attempted without a
	// subject or email.
	ErrIncompleteClaims = errors.New("claims missing subject or email")
)

// Config defines the codec's two secret families and lifetimes.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Claims is the authenticated identity carried inside access and refresh
// tokens. Subject and Email are required at issuance; refresh tokens
// additionally carry a token identity in RegisteredClaims.ID (jti).
type Claims struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access and refresh tokens. The two token
// classes use distinct HS256 secrets so leaking one key family cannot forge
// the other.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a codec. Missing secrets and
// non-positive TTLs are configuration errors surfaced here, before any token
// operation is attempted.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid AccessTTL configuration")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid RefreshTTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess signs claims with the access secret and a fixed short expiry.
// Access tokens never carry a jti.
func (m *Manager) IssueAccess(claims Claims) (string, error) {
	if claims.Subject == "" || claims.Email == "" {
		return "", ErrIncompleteClaims
	}

	now := time.Now()
	claims.ID = ""
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.config.AccessTTL))
	claims.Issuer = m.config.Issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.AccessSecret)
}

// IssueRefresh signs claims plus the given token identity with the refresh
// secret and a fixed long expiry.
func (m *Manager) IssueRefresh(claims Claims, jti string) (string, error) {
	if claims.Subject == "" || claims.Email == "" {
		return "", ErrIncompleteClaims
	}
	if jti == "" {
		return "", ErrTokenInvalid
	}

	now := time.Now()
	claims.ID = jti
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.config.RefreshTTL))
	claims.Issuer = m.config.Issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.RefreshSecret)
}

// ParseAccess checks signature and expiry against the access secret.
// Returns [ErrTokenExpired] past expiry and [ErrTokenInvalid] for any other
// verification failure.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.config.AccessSecret, false)
}

// ParseRefresh checks signature and expiry against the refresh secret and
// additionally requires a jti in the payload.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.config.RefreshSecret, true)
}

func (m *Manager) parse(tokenStr string, secret []byte, requireID bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	if requireID && claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// DecodeUnverified decodes a token payload WITHOUT verifying the signature.
// It exists solely to recover best-effort identity for hook context and must
// never feed an access-control decision; use ParseAccess/ParseRefresh for
// those.
func (m *Manager) DecodeUnverified(tokenStr string) (*Claims, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}

// NewTokenID generates a globally-unique, unguessable refresh token identity
// (128-bit random UUIDv4).
func NewTokenID() string {
	return uuid.NewString()
}
