package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	inner := WrapErrorWithReason("Interact", CodeElementNotFound, "wait_selector_timeout")
	outer := Wrap("invoke", CodeInteractionFailed, inner, nil)

	assert.Equal(t, CodeInteractionFailed, CodeOf(outer))
	assert.Equal(t, CodeElementNotFound, CodeOf(inner))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := WrapErrorWithReason("UpdateURL", CodeNoActiveTab, "no_active_tab")
	wrapped := fmt.Errorf("tool: %w", Wrap("invoke", CodeInternal, inner, nil))

	assert.True(t, HasCode(wrapped, CodeNoActiveTab))
	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.False(t, HasCode(wrapped, CodeNavigationFailed))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestReason(t *testing.T) {
	err := WrapWithReason("OpenTab", CodeNavigationFailed, errors.New("net::ERR_NAME_NOT_RESOLVED"), "goto_failed")

	assert.Equal(t, "goto_failed", Reason(err))
	assert.Equal(t, "OpenTab: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.Equal(t, "", Reason(errors.New("plain")))
}

func TestWrap_NilMetadata(t *testing.T) {
	err := Wrap("op", CodeInternal, nil, nil)

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.NotNil(t, appErr.Metadata)
	assert.Equal(t, "op", err.Error())
}
