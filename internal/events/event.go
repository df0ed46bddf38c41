// Package events handles Assurance telemetry records: dedup keys, rendering
// events into prompt-ready text, and error-signal detection.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// SDK-extension payload fields, in the order they should render.
var sdkFields = []string{
	"ACPExtensionEventType",
	"ACPExtensionEventSource",
	"ACPExtensionEventName",
	"ACPExtensionEventUniqueIdentifier",
	"ACPExtensionEventParentIdentifier",
}

// Backend-service payload fields.
var backendFields = []string{"status", "logLevel", "message", "messages"}

// Key returns the dedup key for an event: its ID when present, otherwise a
// content hash. Two uploads of the same record always produce the same key.
func Key(ev models.Event) string {
	if ev.ID != "" {
		return ev.ID
	}
	return Fingerprint(ev)
}

// Fingerprint hashes the event content. json.Marshal sorts map keys, so the
// hash is stable across uploads regardless of payload field order.
func Fingerprint(ev models.Event) string {
	raw, err := json.Marshal(struct {
		Vendor    string                 `json:"vendor"`
		Type      string                 `json:"type"`
		Timestamp time.Time              `json:"timestamp"`
		Payload   map[string]interface{} `json:"payload"`
	}{ev.Vendor, ev.Type, ev.Timestamp, ev.Payload})
	if err != nil {
		raw = []byte(ev.Vendor + ev.Type + ev.Timestamp.String())
	}
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:16])
}

// Category classifies an event as "sdk" (dispatched by an SDK extension) or
// "backend" (returned by an Adobe backend service).
func Category(ev models.Event) string {
	for k := range ev.Payload {
		if strings.HasPrefix(k, "ACPExtension") {
			return "sdk"
		}
	}
	return "backend"
}

// Render produces the text block an event is indexed and prompted with.
// High-value fields come first; remaining payload keys follow sorted so the
// output is deterministic.
func Render(ev models.Event) string {
	var sb strings.Builder

	if ev.ID != "" {
		fmt.Fprintf(&sb, "Event %s", ev.ID)
	} else {
		sb.WriteString("Event")
	}
	if ev.Type != "" {
		fmt.Fprintf(&sb, " type=%s", ev.Type)
	}
	if ev.Vendor != "" {
		fmt.Fprintf(&sb, " vendor=%s", ev.Vendor)
	}
	if !ev.Timestamp.IsZero() {
		fmt.Fprintf(&sb, " at=%s", ev.Timestamp.UTC().Format(time.RFC3339))
	}
	sb.WriteString("\n")

	seen := map[string]bool{}
	writeField := func(k string) {
		v, ok := ev.Payload[k]
		if !ok || seen[k] {
			return
		}
		seen[k] = true
		fmt.Fprintf(&sb, "  %s: %s\n", k, renderValue(v))
	}
	for _, k := range sdkFields {
		writeField(k)
	}
	for _, k := range backendFields {
		writeField(k)
	}

	rest := make([]string, 0, len(ev.Payload))
	for k := range ev.Payload {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		writeField(k)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return "null"
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}

// Metadata builds the vector-index metadata for an event, carrying the
// error flag, SDK/backend categorization, and timestamp the retriever and
// error-analysis node read back.
func Metadata(ev models.Event, isError bool) map[string]string {
	md := map[string]string{
		"category": Category(ev),
		"error":    fmt.Sprintf("%t", isError),
	}
	if !ev.Timestamp.IsZero() {
		md["timestamp"] = ev.Timestamp.UTC().Format(time.RFC3339)
	}
	if ev.Vendor != "" {
		md["vendor"] = ev.Vendor
	}
	return md
}
