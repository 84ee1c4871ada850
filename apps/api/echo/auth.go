package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/operator"
)

const tokenContextKey = "operatorToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func getOperatorClaims(conf *core.Config, op operator.Operator) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   op.Username,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: op.Username,
	}
}

// authenticate verifies the operator credentials and returns fresh claims.
func authenticate(uname, pwd string, svc operator.Verifier) (operator.Operator, error) {
	op, err := svc.Verify(uname, pwd)
	if err != nil {
		if errors.Cause(err) == operator.ErrBadCredentials {
			return operator.Operator{}, errAuthenticationFailed
		}
		return operator.Operator{}, errors.Wrap(err, "verifying credentials")
	}
	return op, nil
}

// generateToken generates a signed JWT token string representing the Claims.
func (s *server) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtCfg.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtCfg.SigningKey)
	return ss, errors.Wrap(err, "signing token")
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
