package llm

import (
	"errors"
	"fmt"
)

const (
	ServiceGeneration = "generation"
	ServiceEmbedding  = "embedding"
	ServiceSentiment  = "sentiment"
)

var (
	ErrGeneration = errors.New("generation service failure")
	ErrEmbedding  = errors.New("embedding service failure")
	ErrSentiment  = errors.New("sentiment service failure")
)

// ServiceError marks a failed call to a model service. It matches the
// ErrGeneration, ErrEmbedding and ErrSentiment sentinels with errors.Is.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrGeneration:
		return e.Service == ServiceGeneration
	case ErrEmbedding:
		return e.Service == ServiceEmbedding
	case ErrSentiment:
		return e.Service == ServiceSentiment
	}
	return false
}

// Wrap tags err as a failure of service. A nil err stays nil.
func Wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) && se.Service == service {
		return err
	}
	return &ServiceError{Service: service, Err: err}
}
