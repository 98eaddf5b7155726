package trace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/intentlang/isl/isl/types"
)

// Keys whose values are never recorded, whatever they contain
var forbiddenKeyFragments = []string{
	"password", "password_hash", "secret", "api_key", "apikey",
	"access_token", "accesstoken", "refresh_token", "refreshtoken",
	"private_key", "privatekey", "credit_card", "creditcard",
	"ssn", "social_security",
}

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// redactMap drops forbidden keys and masks recognizable PII in the rest
func redactMap(value map[string]any) map[string]any {
	if value == nil {
		return nil
	}
	redacted := make(map[string]any, len(value))
	for key, v := range value {
		lowerKey := strings.ToLower(key)
		if isForbiddenKey(lowerKey) {
			continue
		}
		switch {
		case strings.Contains(lowerKey, "email"):
			redacted[key] = redactString(v, redactEmail)
		case strings.Contains(lowerKey, "ip") || lowerKey == "ip_address":
			redacted[key] = redactString(v, redactIP)
		case strings.Contains(lowerKey, "phone"):
			redacted[key] = redactString(v, redactPhone)
		default:
			redacted[key] = redactValue(v)
		}
	}
	return redacted
}

// redactValue masks PII-shaped strings and recurses into containers
func redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, "@") && strings.Contains(v, ".") {
			return redactEmail(v)
		}
		if ipv4Pattern.MatchString(v) {
			return redactIP(v)
		}
		return v
	case map[string]any:
		return redactMap(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = redactValue(elem)
		}
		return out
	default:
		return value
	}
}

func redactSnapshot(state types.StateSnapshot) types.StateSnapshot {
	if state == nil {
		return nil
	}
	redacted := make(types.StateSnapshot, len(state))
	for entity, records := range state {
		out := make([]map[string]any, len(records))
		for i, record := range records {
			out[i] = redactMap(record)
		}
		redacted[entity] = out
	}
	return redacted
}

func redactString(v any, mask func(string) string) any {
	if s, ok := v.(string); ok {
		return mask(s)
	}
	return redactValue(v)
}

func redactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	local := parts[0]
	masked := "*"
	if len(local) > 1 {
		keep := len(local) - 1
		if keep > 3 {
			keep = 3
		}
		masked = string(local[0]) + strings.Repeat("*", keep)
	}
	return fmt.Sprintf("%s@%s", masked, parts[1])
}

func redactIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.xxx.xxx", parts[0], parts[1])
	}
	return "xxx.xxx.xxx.xxx"
}

func redactPhone(phone string) string {
	if len(phone) > 4 {
		return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
	}
	return "****"
}

func isForbiddenKey(lowerKey string) bool {
	for _, fragment := range forbiddenKeyFragments {
		if strings.Contains(lowerKey, fragment) {
			return true
		}
	}
	return false
}
