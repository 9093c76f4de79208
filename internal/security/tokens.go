package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, forged, expired, or of the wrong type.
	ErrInvalidToken = errors.New("invalid token")
)

// Token type discriminators carried in the typ claim.
const (
	TokenTypeAccess            = "access"
	TokenTypeRefresh           = "refresh"
	TokenTypeEmailVerification = "email_verification"
)

// TokenPayload is the identity embedded in every token this service signs.
type TokenPayload struct {
	AccountID    string
	Email        string
	Portal       string
	SessionToken string
	ProfileID    string
	CustomerID   string
	SupplierID   string
	Roles        []string
}

// Claims holds the JWT claims for access, refresh and verification tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email        string   `json:"email"`
	Portal       string   `json:"portal"`
	SessionToken string   `json:"session_token,omitempty"`
	ProfileID    string   `json:"profile_id,omitempty"`
	CustomerID   string   `json:"customer_id,omitempty"`
	SupplierID   string   `json:"supplier_id,omitempty"`
	Roles        []string `json:"roles,omitempty"`
	Type         string   `json:"typ"`
}

// Payload returns the TokenPayload carried by c.
func (c *Claims) Payload() TokenPayload {
	return TokenPayload{
		AccountID:    c.Subject,
		Email:        c.Email,
		Portal:       c.Portal,
		SessionToken: c.SessionToken,
		ProfileID:    c.ProfileID,
		CustomerID:   c.CustomerID,
		SupplierID:   c.SupplierID,
		Roles:        c.Roles,
	}
}

// TokenExpiry sets the lifetimes of an access/refresh pair.
type TokenExpiry struct {
	Access  time.Duration
	Refresh time.Duration
}

// TokenPair is an issued access/refresh pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenProvider issues and validates JWTs using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	keyID      string
	now        func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and validated on every verify. keyID, when non-empty, is written
// to the kid header.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience, keyID string) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		keyID:      keyID,
		now:        time.Now,
	}
}

// GenerateTokenPair issues an access token and a refresh token for payload. The refresh token carries the
// same claims minus roles.
func (p *TokenProvider) GenerateTokenPair(payload TokenPayload, expiry TokenExpiry) (TokenPair, error) {
	if expiry.Access <= 0 || expiry.Refresh <= 0 {
		return TokenPair{}, errors.New("security: token expiry must be positive")
	}
	access, accessExp, err := p.issue(payload, TokenTypeAccess, expiry.Access)
	if err != nil {
		return TokenPair{}, err
	}
	refreshPayload := payload
	refreshPayload.Roles = nil
	refresh, refreshExp, err := p.issue(refreshPayload, TokenTypeRefresh, expiry.Refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// GenerateVerificationToken issues a single-purpose email verification token valid for expiryHours.
// It carries no session token, so it can never authenticate a request.
func (p *TokenProvider) GenerateVerificationToken(payload TokenPayload, expiryHours int) (string, error) {
	if expiryHours <= 0 {
		return "", errors.New("security: verification expiry must be positive")
	}
	payload.SessionToken = ""
	payload.Roles = nil
	token, _, err := p.issue(payload, TokenTypeEmailVerification, time.Duration(expiryHours)*time.Hour)
	return token, err
}

func (p *TokenProvider) issue(payload TokenPayload, typ string, ttl time.Duration) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   payload.AccountID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:        payload.Email,
		Portal:       payload.Portal,
		SessionToken: payload.SessionToken,
		ProfileID:    payload.ProfileID,
		CustomerID:   payload.CustomerID,
		SupplierID:   payload.SupplierID,
		Roles:        payload.Roles,
		Type:         typ,
	}
	token, err := p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	method := signingMethod(p.privateKey.Public())
	if method == nil {
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	if p.keyID != "" {
		t.Header["kid"] = p.keyID
	}
	return t.SignedString(p.privateKey)
}

func signingMethod(pub crypto.PublicKey) jwt.SigningMethod {
	switch pub.(type) {
	case *rsa.PublicKey:
		return jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		return jwt.SigningMethodES256
	default:
		return nil
	}
}

// VerifyToken parses tokenString into a fresh T and validates signature, algorithm, exp, iss and aud.
// Any failure yields ErrInvalidToken; a partially valid payload is never returned.
func VerifyToken[T any, PT interface {
	*T
	jwt.Claims
}](p *TokenProvider, tokenString string) (*T, error) {
	method := signingMethod(p.publicKey)
	if method == nil {
		return nil, ErrInvalidToken
	}
	claims := PT(new(T))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return (*T)(claims), nil
}

// VerifyAccess verifies an access token and returns its claims.
func (p *TokenProvider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verifyType(tokenString, TokenTypeAccess)
}

// VerifyRefresh verifies a refresh token and returns its claims.
func (p *TokenProvider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verifyType(tokenString, TokenTypeRefresh)
}

// VerifyVerification verifies an email verification token and returns its claims.
func (p *TokenProvider) VerifyVerification(tokenString string) (*Claims, error) {
	return p.verifyType(tokenString, TokenTypeEmailVerification)
}

func (p *TokenProvider) verifyType(tokenString, typ string) (*Claims, error) {
	claims, err := VerifyToken[Claims](p, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if typ != TokenTypeEmailVerification && claims.SessionToken == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UnverifiedPortal reads the portal claim without checking the signature. It is only good for routing a token
// to the verifier that owns it; callers must still verify the token.
func UnverifiedPortal(tokenString string) (string, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Portal == "" {
		return "", ErrInvalidToken
	}
	return claims.Portal, nil
}

func generateJTI() (string, error) {
	return RandomToken(16)
}
