package service

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindInvalidState
	KindUnauthorized
	KindTransientStoreFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransientStoreFailure:
		return "transient_store_failure"
	default:
		return "unknown"
	}
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrSelfRequest           = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends        = errors.New("already friends with this user")
	ErrRequestAlreadyPending = errors.New("friend request already pending")
	ErrRequestNotFound       = errors.New("friend request not found")
	ErrNotRequestRecipient   = errors.New("only the recipient can respond to a friend request")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserExists            = errors.New("username or email already registered")
	ErrMissingFields         = errors.New("required fields are missing")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrFieldTooLong          = errors.New("profile field is too long")
)

// Error 携带分类与操作名的业务错误
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// storeFailure 包装数据库/缓存层错误
func storeFailure(op string, err error) *Error {
	return newError(KindTransientStoreFailure, op, err)
}

// KindOf 返回错误分类，非业务错误返回 KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
