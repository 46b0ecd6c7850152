package correlate

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidTopicFilter is returned for filters violating MQTT v5.0
	// wildcard rules.
	ErrInvalidTopicFilter = errors.New("invalid topic filter")

	// ErrEmptyTopic is returned for empty topics or filters.
	ErrEmptyTopic = errors.New("topic cannot be empty")
)

// ValidateTopicFilter validates a subscription topic filter according to
// MQTT v5.0 section 4.7.1: wildcards must occupy a whole level and '#' must
// be the last level.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return ErrEmptyTopic
	}

	if !utf8.ValidString(filter) || strings.ContainsRune(filter, 0) {
		return ErrInvalidTopicFilter
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, "+") && level != "+" {
			return ErrInvalidTopicFilter
		}
		if strings.Contains(level, "#") {
			if level != "#" || i != len(levels)-1 {
				return ErrInvalidTopicFilter
			}
		}
	}
	return nil
}

// TopicMatch reports whether a topic name matches a topic filter under MQTT
// v5.0 matching rules (section 4.7). Topics starting with '$' never match a
// wildcard at the root level.
func TopicMatch(filter, topic string) bool {
	if filter == "" || topic == "" {
		return false
	}

	if topic[0] == '$' && (filter[0] == '+' || filter[0] == '#') {
		return false
	}

	flevels := strings.Split(filter, "/")
	tlevels := strings.Split(topic, "/")

	for i, flevel := range flevels {
		if flevel == "#" {
			// '#' matches the parent level too: "a/#" matches "a".
			return i == len(flevels)-1
		}

		if i >= len(tlevels) {
			return false
		}

		if flevel != "+" && flevel != tlevels[i] {
			return false
		}
	}

	return len(flevels) == len(tlevels)
}
