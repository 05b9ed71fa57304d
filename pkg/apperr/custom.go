package apperr

import (
	"errors"
	"fmt"
)

// CollaboratorError は外部コラボレータ呼び出しの失敗を表す。
type CollaboratorError struct {
	Collaborator string // コラボレータ名（hss, gateway）
	Operation    string // 操作名（auth-info, update-location等）
	Timeout      bool   // 応答期限超過かどうか
	Cause        error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *CollaboratorError) Error() string {
	kind := "failure"
	if e.Timeout {
		kind = "timeout"
	}
	if e.Cause != nil {
		return fmt.Sprintf("collaborator %s: collaborator=%s, operation=%s, cause=%v",
			kind, e.Collaborator, e.Operation, e.Cause)
	}
	return fmt.Sprintf("collaborator %s: collaborator=%s, operation=%s",
		kind, e.Collaborator, e.Operation)
}

// Unwrap は根本原因を返す。
func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}

// Is は分類用センチネル（ErrCollaboratorFailure / ErrCollaboratorTimeout）との比較を行う。
func (e *CollaboratorError) Is(target error) bool {
	if e.Timeout {
		return target == ErrCollaboratorTimeout
	}
	return target == ErrCollaboratorFailure
}

// NewCollaboratorError はCollaboratorErrorを生成する。
func NewCollaboratorError(collaborator, operation string, timeout bool, cause error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Operation:    operation,
		Timeout:      timeout,
		Cause:        cause,
	}
}

// IsTimeout は応答期限超過を示すエラーかどうかを返す。
func IsTimeout(err error) bool {
	return errors.Is(err, ErrCollaboratorTimeout)
}

// ProtocolError はNASメッセージ検証エラーを表す。
type ProtocolError struct {
	Field   string // 問題のあるフィールド名
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: field=%s, message=%s", e.Field, e.Message)
}

// Unwrap はErrMalformedInputを返す。
func (e *ProtocolError) Unwrap() error {
	return ErrMalformedInput
}

// NewProtocolError はProtocolErrorを生成する。
func NewProtocolError(field, message string) *ProtocolError {
	return &ProtocolError{
		Field:   field,
		Message: message,
	}
}
