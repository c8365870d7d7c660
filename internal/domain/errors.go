package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError - типизированная ошибка транспорта.
// StatusCode равен 0 для сетевых ошибок (DNS, отказ соединения, таймаут).
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("feedbucket api network error: %v", e.Err)
		}
		return fmt.Sprintf("feedbucket api network error: %s", e.Body)
	}
	return fmt.Sprintf("feedbucket api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewNotFound синтезирует ошибку в форме HTTP 404.
func NewNotFound(what string) error {
	return &APIError{StatusCode: http.StatusNotFound, Body: what + " not found"}
}

// StatusCode извлекает код ответа из цепочки ошибок, 0 если это не APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound сообщает, что ошибка имеет форму 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// ValidationError собирает ошибки валидации входных данных по полям.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

// Add добавляет проблему.
func (e *ValidationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// OrNil возвращает nil, если проблем нет.
func (e *ValidationError) OrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
