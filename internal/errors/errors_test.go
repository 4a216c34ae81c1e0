package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	assert.Equal(t, "Failed to fetch telemetry", errFactory.New(errors.ErrTelemetryFetch).Error())
	assert.Equal(t, "custom", errFactory.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Failed to fetch telemetry: boom",
		errFactory.Wrap(errors.ErrTelemetryFetch, fmt.Errorf("boom")).Error())
	assert.Equal(t, "some_unknown_code", errors.GetErrorMessage("some_unknown_code"))
}

func TestWithDataKeepsCode(t *testing.T) {
	err := errors.New().New(errors.ErrPayloadParse).WithData("offset 3")

	assert.Equal(t, errors.ErrPayloadParse, err.Code())
	assert.Equal(t, "offset 3", err.GetData())
	assert.Contains(t, err.Error(), "offset 3")
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()
	inner := errFactory.New(errors.ErrPayloadParse)
	outer := errFactory.Wrap(errors.ErrTelemetryFetch, inner)
	wrapped := fmt.Errorf("device nvme0n1: %w", outer)

	assert.True(t, errors.HasCode(wrapped, errors.ErrTelemetryFetch))
	assert.True(t, errors.HasCode(wrapped, errors.ErrPayloadParse))
	assert.False(t, errors.HasCode(wrapped, errors.ErrIdentityFetch))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
	assert.Equal(t, errors.ErrTelemetryFetch, errors.CodeOf(wrapped))
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(fmt.Errorf("plain")))
}
