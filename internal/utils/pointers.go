package utils

import (
	"fmt"
	"time"
)

func Float64Ptr(f float64) *float64 {
	return &f
}

func Int64Ptr(i int64) *int64 {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}

const columnPrefixFmt = "%s.%s"

func PrefixSliceOfStrings(prefix string, input []string, ignore ...string) []string {
	out := make([]string, len(input))

inputloop:
	for i, v := range input {
		for _, ignored := range ignore {
			if v == ignored {
				continue inputloop
			}
		}

		out[i] = fmt.Sprintf(columnPrefixFmt, prefix, v)
	}
	return out
}
