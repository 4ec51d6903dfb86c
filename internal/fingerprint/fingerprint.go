package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"captionforge/internal/captions"
)

// Input holds every job field that affects the rendered output.
type Input struct {
	SourceRef       string
	SubtitlePayload string
	Dialect         captions.Dialect
	Options         captions.Options
}

// canonical is the serialized form. encoding/json writes map keys in sorted
// order, so option insertion order never reaches the digest.
type canonical struct {
	SourceRef       string         `json:"source_ref"`
	SubtitlePayload string         `json:"subtitle_payload"`
	Dialect         string         `json:"dialect"`
	Options         map[string]any `json:"options"`
}

// Compute returns the hex SHA-256 digest of the canonical job encoding.
func Compute(in Input) (string, error) {
	payload, err := Canonical(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Canonical returns the bytes Compute hashes.
func Canonical(in Input) ([]byte, error) {
	opts := map[string]any(in.Options)
	if opts == nil {
		opts = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(canonical{
		SourceRef:       in.SourceRef,
		SubtitlePayload: in.SubtitlePayload,
		Dialect:         string(in.Dialect),
		Options:         opts,
	})
	if err != nil {
		return nil, fmt.Errorf("encode fingerprint input: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Short returns the first 12 characters of a digest for log lines.
func Short(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
