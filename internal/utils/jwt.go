package utils // package utils provides helpers for token issuance, hashing and identifiers

import (
	"errors" // sentinel errors distinguishing expired from malformed tokens
	"time"   // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // uuid supplies the jti claim for revocation
)

// Verification failures. Handlers map ErrTokenExpired and ErrTokenInvalid to
// distinct machine-readable codes, so the two are deliberately separate.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessToken represents a signed bearer token along with its expiry. The
// Token field contains the serialized JWT string. Tokens are long-lived
// (days, not minutes) because the service has no refresh flow; logout and
// the optional revocation list are the only ways to end a session early.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the verified content of a bearer token. The claim set is
// readable by anyone holding the token; it is signed, not encrypted.
type Claims struct {
	UserID uint64 // subject (sub)
	Role   string // "patient" or "doctor"
	Email  string // email at issuance time
	JTI    string // unique token id, keys the revocation list
	Exp    time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user's identity and a TTL in days, and returns the
// signed token together with its expiration time. The JWT carries sub,
// role, email, jti, exp and iat.
func NewAccessToken(secret string, userID uint64, role, email string, ttlDays int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"email": email,
		"jti":   uuid.NewString(),
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a serialized token
// and returns its claims. Expired tokens yield ErrTokenExpired; any other
// failure (bad signature, wrong algorithm, malformed structure, missing
// claims) yields ErrTokenInvalid. The caller never learns which structural
// check failed.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC signatures are ever issued; reject anything else.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	var c Claims
	// Numeric claims come back as float64 from the JSON decoder.
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, ErrTokenInvalid
	}
	c.UserID = uint64(sub)
	if c.Role, ok = mc["role"].(string); !ok || c.Role == "" {
		return Claims{}, ErrTokenInvalid
	}
	c.Email, _ = mc["email"].(string)
	c.JTI, _ = mc["jti"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		c.Exp = time.Unix(int64(exp), 0).UTC()
	}
	return c, nil
}
