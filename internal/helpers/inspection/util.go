package inspection

import (
	"sort"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
)

func str(m dss.Raw, key string) string {
	s, _ := m[key].(string)
	return s
}

func pick(items []dss.Raw, keys ...string) []dss.Raw {
	out := make([]dss.Raw, 0, len(items))
	for _, item := range items {
		entry := make(dss.Raw, len(keys))
		for _, k := range keys {
			entry[k] = item[k]
		}
		out = append(out, entry)
	}
	return out
}

func nonNil(items []dss.Raw) []dss.Raw {
	if items == nil {
		return []dss.Raw{}
	}
	return items
}

func nonNilMap(m dss.Raw) dss.Raw {
	if m == nil {
		return dss.Raw{}
	}
	return m
}

func sortedKeys(m map[string]dss.Raw) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
