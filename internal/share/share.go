// Package share encodes the two source buffers into a link and back.
//
// The payload is zlib-compressed "v1\x00<struct>\x00<template>", base64
// encoded with the URL-unsafe characters +/= replaced by -_. so the result
// can sit in a query string unescaped. Texts containing NUL cannot be
// encoded.
package share

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Param is the query parameter carrying the payload.
const Param = "saved"

// DefaultBase is used when no base URL is configured.
const DefaultBase = "https://tmplplay.local/"

const version = "v1"

// maxPayload bounds decompression of untrusted links.
const maxPayload = 4 << 20

var (
	// ErrMalformed is returned for payloads that do not decode to a v1 pair.
	ErrMalformed = errors.New("malformed shared link")
	// ErrNUL is returned by Encode for texts containing NUL, which separates
	// the fields of the payload.
	ErrNUL = errors.New("text contains a NUL byte")
)

var (
	toURLSafe   = strings.NewReplacer("+", "-", "/", "_", "=", ".")
	fromURLSafe = strings.NewReplacer("-", "+", "_", "/", ".", "=")
)

// Encode returns the payload for the pair.
func Encode(structSource, templateSource string) (string, error) {
	if strings.ContainsRune(structSource, 0) {
		return "", fmt.Errorf("struct: %w", ErrNUL)
	}
	if strings.ContainsRune(templateSource, 0) {
		return "", fmt.Errorf("template: %w", ErrNUL)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = io.WriteString(zw, version+"\x00"+structSource+"\x00"+templateSource)
	_ = zw.Close()
	return toURLSafe.Replace(base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// Decode reverses Encode.
func Decode(payload string) (structSource, templateSource string, err error) {
	raw, err := base64.StdEncoding.DecodeString(fromURLSafe.Replace(strings.TrimSpace(payload)))
	if err != nil {
		return "", "", fmt.Errorf("%w: base64: %v", ErrMalformed, err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxPayload+1))
	if err != nil {
		return "", "", fmt.Errorf("%w: inflate: %v", ErrMalformed, err)
	}
	if len(data) > maxPayload {
		return "", "", fmt.Errorf("%w: payload too large", ErrMalformed)
	}

	parts := strings.Split(string(data), "\x00")
	if len(parts) != 3 || parts[0] != version {
		return "", "", ErrMalformed
	}
	return parts[1], parts[2], nil
}

// Link appends the payload to base as ?saved=. An empty base uses
// DefaultBase.
func Link(base, structSource, templateSource string) (string, error) {
	payload, err := Encode(structSource, templateSource)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(base) == "" {
		base = DefaultBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return DefaultBase + "?" + Param + "=" + payload, nil
	}
	u.RawQuery = Param + "=" + payload
	u.Fragment = ""
	return u.String(), nil
}

// Parse extracts the pair from a full link or a bare payload. ok is false
// for anything that is not a well-formed v1 link.
func Parse(link string) (structSource, templateSource string, ok bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", "", false
	}
	payload := link
	if strings.Contains(link, "?") || strings.Contains(link, "://") {
		u, err := url.Parse(link)
		if err != nil {
			return "", "", false
		}
		payload = u.Query().Get(Param)
		if payload == "" {
			return "", "", false
		}
	}
	s, t, err := Decode(payload)
	if err != nil {
		return "", "", false
	}
	return s, t, true
}
