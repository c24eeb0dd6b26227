package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims inclui os claims padrão JWT mais os campos próprios da aplicação.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Nome   string `json:"nome,omitempty"`
}

// Generate gera um token JWT assinado que identifica o usuário.
func Generate(secret, userID, nome, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vazio")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID: userID,
		Nome:   nome,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida o token e devolve o userID.
// Retorna erro se o token é inválido, expirado ou tem assinatura incorreta.
func Parse(secret, tokenString string) (userID string, err error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vazio")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("claims inválidos")
	}
	return claims.UserID, nil
}
