package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor represents the pagination cursor components. Score is present only
// for score-ordered pages; time-ordered pages omit it.
type Cursor struct {
	Score     *int
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	ts := cursor.CreatedAt.UTC().Format(time.RFC3339Nano)
	var payload string
	if cursor.Score != nil {
		payload = fmt.Sprintf("%d|%s|%s", *cursor.Score, ts, cursor.ID.String())
	} else {
		payload = fmt.Sprintf("%s|%s", ts, cursor.ID.String())
	}
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.Split(string(decoded), "|")

	var cursor Cursor
	switch len(parts) {
	case 2:
	case 3:
		score, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid cursor score: %w", err)
		}
		cursor.Score = &score
		parts = parts[1:]
	default:
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	cursor.CreatedAt = t
	cursor.ID = id
	return &cursor, nil
}
