package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound              = errors.New("resource not found")
	ErrWorkerNotFound        = fmt.Errorf("worker %w", ErrNotFound)
	ErrNoActiveAssignment    = errors.New("no pending or overdue assignment for today")
	ErrAlreadySubmittedToday = errors.New("assessment already submitted today")
	ErrAlreadyAssigned       = errors.New("assignment already scheduled for this date")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPermissionDenied      = errors.New("permission denied")
)

// ValidationError 评估输入校验失败，Fields 为字段到原因的映射
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
