package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddealsberlin/backend/pkg/config"
)

func TestNoopCheckerWithoutAPIKey(t *testing.T) {
	checker, err := NewChecker(context.Background(), config.ModerationConfig{}, nil)
	require.NoError(t, err)

	result, err := checker.CheckDeal(context.Background(), "any", "thing", "goes")
	require.NoError(t, err)
	assert.False(t, result.IsSpam)
}

func TestParseVerdict(t *testing.T) {
	result, err := parseVerdict(context.Background(), `{"is_spam":true,"reason":"unrelated advertising"}`, nil)
	require.NoError(t, err)
	assert.True(t, result.IsSpam)
	assert.Equal(t, "unrelated advertising", result.Reason)
}

func TestParseVerdictStripsMarkdownFences(t *testing.T) {
	result, err := parseVerdict(context.Background(), "```json\n{\"is_spam\":false,\"reason\":\"looks fine\"}\n```", nil)
	require.NoError(t, err)
	assert.False(t, result.IsSpam)
}

func TestParseVerdictFailsOpenOnGarbage(t *testing.T) {
	result, err := parseVerdict(context.Background(), "I cannot answer that", nil)
	require.NoError(t, err)
	assert.False(t, result.IsSpam)
}
