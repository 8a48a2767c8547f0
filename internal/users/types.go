// Package users は資格情報ストアへのアダプターを提供します。
// パスワードは bcrypt ハッシュとしてのみ保存し、表示用の検索結果には含めません。
package users

import (
	"errors"
	"time"
)

var (
	// ErrNotFound は該当ユーザーが存在しないことを表します。
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken はメールアドレスが既に登録済みであることを表します。
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordMismatch はパスワードのハッシュ照合に失敗したことを表します。
	ErrPasswordMismatch = errors.New("password mismatch")
)

// User は保存されているユーザーレコードです。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity はパスワードを除いた認証済みユーザーの情報です。
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity はパスワードハッシュを除いた表示用の情報を返します。
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}
