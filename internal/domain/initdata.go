package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const initDataParam = "tgWebAppData="

// ParseInitData accepts either the bare init data string or a web app URL
// and returns the decoded init data. URLs carry it double-encoded in the
// tgWebAppData parameter.
func ParseInitData(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: init data is empty", ErrLoginPayloadUnavailable)
	}

	_, data, found := strings.Cut(raw, initDataParam)
	if !found {
		return raw, nil
	}
	data, _, _ = strings.Cut(data, "&tgWebAppVersion")

	for range 2 {
		decoded, err := url.QueryUnescape(data)
		if err != nil {
			return "", fmt.Errorf("%w: decode init data: %w", ErrLoginPayloadUnavailable, err)
		}
		data = decoded
	}

	if data == "" {
		return "", fmt.Errorf("%w: init data is empty", ErrLoginPayloadUnavailable)
	}
	return data, nil
}
