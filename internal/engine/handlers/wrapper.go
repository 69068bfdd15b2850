package handlers

import (
	"encoding/json"
	"fmt"
)

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(s Session, msg T) (Result, error)

// WithMessage берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Схема кадра уже проверена валидатором, здесь только распаковка.
func WithMessage[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(s Session, raw json.RawMessage) (Result, error) {
		var msg T
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Result{}, fmt.Errorf("invalid message format: %w", err)
		}
		return handler(s, msg)
	}
}
