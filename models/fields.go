package models

import (
	"time"

	"deepessays.dev/deep-essays/store"
)

func fieldString(data store.Fields, key string) string {
	s, _ := data[key].(string)
	return s
}

func fieldBool(data store.Fields, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// fieldInt64 tolerates the numeric types the store round-trips: Firestore
// hands integers back as int64 but JSON-derived fixtures may carry float64.
func fieldInt64(data store.Fields, key string) int64 {
	switch n := data[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func fieldTime(data store.Fields, key string) time.Time {
	t, _ := data[key].(time.Time)
	return t
}
