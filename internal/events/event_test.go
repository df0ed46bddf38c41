package events_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

func sdkEvent() models.Event {
	return models.Event{
		ID:        "evt-001",
		Vendor:    "com.adobe.griffon.mobile",
		Type:      "generic",
		Timestamp: time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC),
		Payload: map[string]interface{}{
			"ACPExtensionEventType":   "com.adobe.eventtype.analytics",
			"ACPExtensionEventSource": "com.adobe.eventsource.requestcontent",
			"ACPExtensionEventName":   "AnalyticsRequest",
			"customKey":               "customValue",
		},
	}
}

func TestKeyPrefersID(t *testing.T) {
	ev := sdkEvent()
	if got := events.Key(ev); got != "evt-001" {
		t.Errorf("Key() = %q, want eventId", got)
	}
}

func TestKeyFallsBackToFingerprint(t *testing.T) {
	ev := sdkEvent()
	ev.ID = ""
	k1 := events.Key(ev)
	k2 := events.Key(ev)
	if k1 != k2 {
		t.Errorf("fingerprint not stable: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "sha256:") {
		t.Errorf("Key() without ID = %q, want content hash", k1)
	}

	// Different content must produce a different key.
	ev2 := sdkEvent()
	ev2.ID = ""
	ev2.Payload["customKey"] = "other"
	if events.Key(ev2) == k1 {
		t.Error("distinct events produced the same fingerprint")
	}
}

func TestCategory(t *testing.T) {
	if got := events.Category(sdkEvent()); got != "sdk" {
		t.Errorf("Category(sdk event) = %q, want sdk", got)
	}

	backend := models.Event{
		Vendor:  "com.adobe.edge.konductor",
		Payload: map[string]interface{}{"status": float64(200), "logLevel": "info"},
	}
	if got := events.Category(backend); got != "backend" {
		t.Errorf("Category(backend event) = %q, want backend", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	ev := sdkEvent()
	first := events.Render(ev)
	for i := 0; i < 10; i++ {
		if got := events.Render(ev); got != first {
			t.Fatal("Render output varies across calls")
		}
	}
	if !strings.Contains(first, "ACPExtensionEventName: AnalyticsRequest") {
		t.Errorf("Render missing high-value field:\n%s", first)
	}
	if !strings.Contains(first, "evt-001") {
		t.Errorf("Render missing event id:\n%s", first)
	}
}

func TestDetectorHeuristics(t *testing.T) {
	d := events.NewDetector(nil)

	tests := []struct {
		name string
		ev   models.Event
		want bool
	}{
		{"plain sdk event", sdkEvent(), false},
		{"error log level", models.Event{Payload: map[string]interface{}{"logLevel": "ERROR"}}, true},
		{"fatal log level", models.Event{Payload: map[string]interface{}{"logLevel": "fatal"}}, true},
		{"http 500", models.Event{Payload: map[string]interface{}{"status": float64(500)}}, true},
		{"http 200", models.Event{Payload: map[string]interface{}{"status": float64(200)}}, false},
		{"error event source", models.Event{Payload: map[string]interface{}{"ACPExtensionEventSource": "com.adobe.eventsource.responseerror"}}, true},
		{"error in type", models.Event{Type: "serviceError"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsError(tt.ev); got != tt.want {
				t.Errorf("IsError() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestDetectorExprRules(t *testing.T) {
	d := events.NewDetector([]string{`vendor == "com.adobe.edge" && status >= 300`})

	ev := models.Event{
		Vendor:  "com.adobe.edge",
		Payload: map[string]interface{}{"status": float64(302)},
	}
	if !d.IsError(ev) {
		t.Error("expr rule should flag 3xx edge event")
	}

	ev.Payload["status"] = float64(200)
	if d.IsError(ev) {
		t.Error("expr rule should not flag 200 edge event")
	}
}

func TestDetectorInvalidRuleSkipped(t *testing.T) {
	d := events.NewDetector([]string{"this is (not valid"})
	if d.IsError(sdkEvent()) {
		t.Error("invalid rule must not flag events")
	}
}
