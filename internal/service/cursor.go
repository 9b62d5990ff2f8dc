package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var errMalformedCursor = errors.New("malformed cursor")

// EncodeCursor packs a row's sort key as base64url("<epoch-millis>_<id>") without padding.
func EncodeCursor(t time.Time, id uuid.UUID) string {
	raw := strconv.FormatInt(t.UnixMilli(), 10) + "_" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. Padded and standard-alphabet input is accepted too.
func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := decodeBase64(strings.TrimSpace(cursor))
	if err != nil {
		return time.Time{}, uuid.Nil, errMalformedCursor
	}

	millis, idPart, ok := strings.Cut(string(raw), "_")
	if !ok {
		return time.Time{}, uuid.Nil, errMalformedCursor
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, uuid.Nil, errMalformedCursor
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	return time.UnixMilli(ms).UTC(), id, nil
}

func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, errMalformedCursor
	}
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	}
	var err error
	for _, enc := range encodings {
		var b []byte
		if b, err = enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, err
}
