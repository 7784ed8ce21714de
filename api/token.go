package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenExpiry reads the exp claim from an access token without verifying
// its signature. The client holds no signing keys; verification is the
// backend's job. This is display/diagnostic information only and must never
// gate an authorisation decision.
func TokenExpiry(rawToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] ParseUnverified")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] GetExpirationTime")
	}
	if exp == nil {
		return time.Time{}, errors.New("[TokenExpiry] token carries no exp claim")
	}
	return exp.Time, nil
}
