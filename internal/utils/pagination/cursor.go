package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode.
// UserID + UpdatedNano (unix nanoseconds) establish a stable cursor. The
// full precision matters: rows sharing a millisecond must stay ordered.
type Cursor struct {
	UserID      uint64 `json:"user_id"`
	UpdatedNano int64  `json:"updated_nano,omitempty"`
}

// At builds the cursor for the row of userID last touched at t.
func At(userID uint64, t time.Time) Cursor {
	return Cursor{UserID: userID, UpdatedNano: t.UnixNano()}
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool { return c.UserID == 0 || c.UpdatedNano == 0 }

// Time is the UTC instant the cursor was taken at.
func (c Cursor) Time() time.Time { return time.Unix(0, c.UpdatedNano).UTC() }

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}
