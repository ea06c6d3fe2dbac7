package lib

import (
	"errors"
	"fmt"
	"net/http"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewSessionToken signs a session JWT for user valid for maxAge
func NewSessionToken(user *tables.User, secret string, maxAge time.Duration, now time.Time) (string, *structs.SessionClaims, error) {
	claims := &structs.SessionClaims{
		Sub:     user.Id,
		Email:   user.Email,
		Name:    user.DisplayName(),
		Picture: user.Photo,
		Iat:     now,
		Exp:     now.Add(maxAge),
		Jti:     uuid.New(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     claims.Sub.String(),
		"email":   claims.Email,
		"name":    claims.Name,
		"picture": claims.Picture,
		"iat":     claims.Iat.Unix(),
		"exp":     claims.Exp.Unix(),
		"jti":     claims.Jti.String(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims, nil
}

// ParseSessionToken parses and validates a session JWT and returns the claims
func ParseSessionToken(tokenStr string, secret string) (*structs.SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Safely extract and validate claims
	subStr, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: invalid sub claim", ErrInvalidToken)
	}
	sub, err := uuid.Parse(subStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid UUID in sub claim", ErrInvalidToken)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: invalid email claim", ErrInvalidToken)
	}

	// name and picture are optional profile fields
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid iat claim", ErrInvalidToken)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid exp claim", ErrInvalidToken)
	}

	jtiStr, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: invalid jti claim", ErrInvalidToken)
	}
	jti, err := uuid.Parse(jtiStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid UUID in jti claim", ErrInvalidToken)
	}

	return &structs.SessionClaims{
		Sub:     sub,
		Email:   email,
		Name:    name,
		Picture: picture,
		Iat:     time.Unix(int64(iat), 0),
		Exp:     time.Unix(int64(exp), 0),
		Jti:     jti,
	}, nil
}

// ExtractSessionToken reads the session token from the session cookie or a bearer header
func ExtractSessionToken(r *http.Request) (string, error) {
	if value, err := GetCookieValue(SessionCookieName, r); err == nil && value != "" {
		return value, nil
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token, nil
		}
	}

	return "", ErrInvalidToken
}
