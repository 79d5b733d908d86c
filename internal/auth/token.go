// Package auth はユーザー登録・認証とセッショントークンの発行・検証を提供する。
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/bookman/internal/model"
)

// Claims はセッショントークンに埋め込む識別情報。
// Subjectには認証済みユーザーのIDを格納する。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名付きセッショントークンの発行と検証を行う。
// 検証はサーバー保持の秘密鍵のみに依存し、サーバー側の状態を持たない。
// 失効リストは持たないため、発行済みトークンは期限切れまで有効。
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager はTokenManagerを生成する。
// expiryは発行するトークンの有効期間（例: 1時間）。
func NewTokenManager(secret []byte, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: secret, expiry: expiry}
}

// Issue は指定ユーザーのセッショントークンを発行する。
// クレームにはsub（ユーザーID）、email、exp、iatを含める。
func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify はトークン文字列を検証し、デコード済みクレームを返す。
// 空文字列はMISSING_TOKEN、署名不正・期限切れ・形式不正はINVALID_TOKENを返す。
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, model.NewMissingTokenError()
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, model.NewInvalidTokenError()
	}

	return claims, nil
}
