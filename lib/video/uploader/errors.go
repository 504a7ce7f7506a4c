package uploader

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ChunkUploadTimeoutError попытка отправки чанка не уложилась в таймаут
type ChunkUploadTimeoutError struct {
	Index   int
	Attempt int
}

func (e ChunkUploadTimeoutError) Error() string {
	return fmt.Sprintf("таймаут отправки чанка %v (попытка %v)", e.Index, e.Attempt+1)
}

// ChunkUploadExhaustedError чанк не отправлен за все попытки, загрузка прервана
type ChunkUploadExhaustedError struct {
	Index    int
	Attempts int
	Err      error
}

func (e ChunkUploadExhaustedError) Error() string {
	return fmt.Sprintf("чанк %v не отправлен за %v попыток: %v", e.Index, e.Attempts, e.Err)
}

func (e ChunkUploadExhaustedError) Unwrap() error {
	return e.Err
}

// ChunkRejectedError сервер отклонил чанк, повтор не поможет
type ChunkRejectedError struct {
	Index int
	Err   error
}

func (e ChunkRejectedError) Error() string {
	return fmt.Sprintf("чанк %v отклонен сервером: %v", e.Index, e.Err)
}

func (e ChunkRejectedError) Unwrap() error {
	return e.Err
}

// StatusError неуспешный HTTP ответ сервера
type StatusError struct {
	StatusCode int
	Message    string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("код ответа %v: %v", e.StatusCode, e.Message)
}

// IsRetryable ошибки транспорта, таймауты, 408, 413, 429 и 5xx повторяются, прочие 4xx нет
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr StatusError
	if !errors.As(err, &statusErr) {
		return true
	}
	switch statusErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusRequestEntityTooLarge, http.StatusTooManyRequests:
		return true
	}
	return statusErr.StatusCode >= 500
}
