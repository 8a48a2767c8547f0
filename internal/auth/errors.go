package auth

import (
	"errors"
	"fmt"
)

// Kind は認証フローで発生するエラーの分類です。
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindAuthentication Kind = "authentication"
	KindInvalidToken   Kind = "invalid_token"
	KindUpstream       Kind = "upstream"
)

// Error は分類と利用者向けメッセージを持つエラーです。
// Message はそのままフラッシュとして表示されます。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf は err に含まれる分類を返します。分類がない場合は KindUpstream です。
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUpstream
}
