package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 40, NormalizeLimit(40))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
}

func TestCursorRoundTripTimeOrdered(t *testing.T) {
	in := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Nil(t, out.Score)
	assert.True(t, out.CreatedAt.Equal(in.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestCursorRoundTripScoreOrdered(t *testing.T) {
	score := -4
	in := Cursor{
		Score:     &score,
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, out.Score)
	assert.Equal(t, -4, *out.Score)
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)
}
