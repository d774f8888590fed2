package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString returns the string attribute field, or "" when it is
// missing or not a string.
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExcludeIDs returns a scan filter that drops items whose field is in ids.
func ExcludeIDs(field string, ids map[string]struct{}) func(map[string]types.AttributeValue) bool {
	return func(item map[string]types.AttributeValue) bool {
		_, excluded := ids[ExtractString(item, field)]
		return !excluded
	}
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
