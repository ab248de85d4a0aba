package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError_Is(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("generating attempt 1: %w", Wrap(ServiceGeneration, base))

	assert.True(t, errors.Is(err, ErrGeneration))
	assert.False(t, errors.Is(err, ErrEmbedding))
	assert.True(t, errors.Is(err, base))

	var se *ServiceError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, ServiceGeneration, se.Service)
	assert.Contains(t, err.Error(), "generation service: connection refused")
}

func TestWrap_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, Wrap(ServiceEmbedding, nil))

	once := Wrap(ServiceEmbedding, errors.New("boom"))
	twice := Wrap(ServiceEmbedding, once)
	assert.Same(t, once, twice)
}
