package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunHealthChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
		"mongo": func(context.Context) error { return errors.New("down") },
	})
	assert.False(t, status.Healthy)
	assert.True(t, status.Services["redis"])
	assert.False(t, status.Services["mongo"])
	assert.Equal(t, status, GetHealthStatus())
}
