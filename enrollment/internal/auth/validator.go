package auth

import (
	"context"
	"crypto/rsa"
	"strings"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/errors"
	"github.com/tilinna/clock"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

const (
	userIDClaim = "user-id"

	// Unauthorized is what a validator may hand back instead of a user id.
	Unauthorized = "unauthorized"
)

var (
	ErrMissingToken   = errors.New("auth: token is missing")
	ErrInvalidToken   = errors.New("auth: token is invalid")
	ErrUnknownKind    = errors.New("auth: unknown validator kind")
	ErrMissingSubject = errors.New("auth: token has no subject")
)

// Validator resolves a bearer token to the id of the user it was issued to.
type Validator interface {
	UserID(ctx context.Context, token string) (string, error)
}

// NewValidator builds the validator selected by configuration.
func NewValidator(tc config.TokenConfig) (Validator, error) {
	switch tc.Kind {
	case "paseto":
		return NewPasetoValidatorFromBytes(tc.PublicKey)
	case "jwt":
		key, err := jwt.ParseRSAPublicKeyFromPEM(tc.PublicKey)
		if err != nil {
			return nil, errors.Annotate(err, "auth: parsing RSA public key")
		}

		return NewJWTValidator(key, clock.Realtime()), nil
	default:
		return nil, errors.Annotatef(ErrUnknownKind, "%q", tc.Kind)
	}
}

type pasetoValidator struct {
	publicKey paseto.V4AsymmetricPublicKey
}

// NewPasetoValidatorFromBytes accepts either the raw 32 byte key or its hex
// encoding.
func NewPasetoValidatorFromBytes(key []byte) (Validator, error) {
	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromBytes(key)
	if err != nil {
		publicKey, err = paseto.NewV4AsymmetricPublicKeyFromHex(strings.TrimSpace(string(key)))
		if err != nil {
			return nil, errors.Annotate(err, "auth: parsing paseto public key")
		}
	}

	return NewPasetoValidator(publicKey), nil
}

func NewPasetoValidator(publicKey paseto.V4AsymmetricPublicKey) Validator {
	return &pasetoValidator{publicKey: publicKey}
}

func (v *pasetoValidator) UserID(ctx context.Context, token string) (string, error) {
	token = stripBearer(token)
	if token == "" {
		return "", errors.Trace(ErrMissingToken)
	}

	parser := paseto.NewParserForValidNow()
	parsed, err := parser.ParseV4Public(v.publicKey, token, nil)
	if err != nil {
		return "", errors.Annotate(ErrInvalidToken, err.Error())
	}

	userID, err := parsed.GetString(userIDClaim)
	if err != nil {
		return "", errors.Annotate(ErrInvalidToken, err.Error())
	}

	return userID, nil
}

type jwtValidator struct {
	publicKey *rsa.PublicKey
	clock     clock.Clock
}

// NewJWTValidator validates RS256 access tokens. The user id is the last
// ':' separated segment of the subject, so federated subjects such as
// "f:<realm>:<id>" resolve to "<id>".
func NewJWTValidator(publicKey *rsa.PublicKey, clk clock.Clock) Validator {
	return &jwtValidator{publicKey: publicKey, clock: clk}
}

func (v *jwtValidator) UserID(ctx context.Context, token string) (string, error) {
	token = stripBearer(token)
	if token == "" {
		return "", errors.Trace(ErrMissingToken)
	}

	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (any, error) { return v.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Annotate(ErrInvalidToken, err.Error())
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", errors.Annotate(ErrInvalidToken, err.Error())
	}

	if i := strings.LastIndex(sub, ":"); i >= 0 {
		sub = sub[i+1:]
	}

	if sub == "" {
		return "", errors.Trace(ErrMissingSubject)
	}

	return sub, nil
}

func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}

	return token
}
