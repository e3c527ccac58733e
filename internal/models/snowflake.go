package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Snowflake is a Discord identifier (guild, channel, message, user, thread).
// The zero value means "unset".
type Snowflake uint64

// ParseSnowflake parses a decimal identifier.
func ParseSnowflake(raw string) (Snowflake, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("id is required")
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return Snowflake(parsed), nil
}

// ParseUserReference accepts a bare user id or a mention in the
// `<@id>` / `<@!id>` forms.
func ParseUserReference(raw string) (Snowflake, error) {
	value := strings.TrimSpace(raw)
	if strings.HasPrefix(value, "<@") && strings.HasSuffix(value, ">") {
		value = strings.TrimSuffix(strings.TrimPrefix(value, "<@"), ">")
		value = strings.TrimPrefix(value, "!")
	}
	return ParseSnowflake(value)
}

// IsZero reports whether the identifier is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

func (s Snowflake) String() string {
	if s == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(s), 10)
}

// Mention renders a user mention.
func (s Snowflake) Mention() string {
	return "<@" + s.String() + ">"
}

// ChannelMention renders a channel mention.
func (s Snowflake) ChannelMention() string {
	return "<#" + s.String() + ">"
}

// MarshalJSON writes the identifier as a JSON number.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(s), 10)), nil
}

// UnmarshalJSON accepts a JSON number, a quoted decimal string or null.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	if raw == "" {
		*s = 0
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %s", string(data))
	}
	*s = Snowflake(parsed)
	return nil
}
