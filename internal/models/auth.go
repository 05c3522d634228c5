package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AnonymousClaims are carried by tokens issued to anonymous staff sessions.
type AnonymousClaims struct {
	AppID string `json:"app_id"`
	jwt.RegisteredClaims
}

// AnonymousSession is returned by the anonymous sign-in endpoint.
type AnonymousSession struct {
	Subject     string    `json:"subject"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}
