package service

import (
	"strings"
	"time"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
