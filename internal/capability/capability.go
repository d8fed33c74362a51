// Package capability mints the short-lived signed token a participant
// presents to the real-time media platform. The token is never persisted;
// every join issues a fresh one.
package capability

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Metadata travels inside the token so the translation agent can read the
// participant's language pair without a backend round trip.
type Metadata struct {
	ParticipantID  string `json:"participant_id"`
	DisplayName    string `json:"display_name"`
	SpeaksLanguage string `json:"speaks_language"`
	HearsLanguage  string `json:"hears_language"`
	RoomCode       string `json:"room_code"`
}

type Claims struct {
	jwt.RegisteredClaims
	SessionName string   `json:"session"`
	Metadata    Metadata `json:"metadata"`
}

type Minter struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
}

var ErrNoCredentials = errors.New("capability: media api key/secret not configured")

func NewMinter(apiKey, apiSecret string, ttl time.Duration) (*Minter, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrNoCredentials
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Minter{apiKey: apiKey, apiSecret: []byte(apiSecret), ttl: ttl}, nil
}

// Mint signs a capability scoped to one session and one identity.
func (m *Minter) Mint(sessionName, identity string, md Metadata) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		SessionName: sessionName,
		Metadata:    md,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.apiSecret)
}

// Parse verifies a capability token and returns its claims. Used by the
// agent worker to read participant metadata.
func (m *Minter) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.apiSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
