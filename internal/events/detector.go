package events

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// Detector flags events carrying error signals. Built-in heuristics cover
// the common Assurance shapes (log level, HTTP status, error event sources);
// deployments can layer expr rules on top for vendor-specific payloads,
// e.g. `logLevel in ["error", "fatal"] || status >= 500`.
type Detector struct {
	programs []*vm.Program
}

// NewDetector compiles the given expr rules. A rule that fails to compile is
// logged and skipped rather than failing startup.
func NewDetector(rules []string) *Detector {
	d := &Detector{}
	for _, rule := range rules {
		prog, err := expr.Compile(rule, expr.AsBool())
		if err != nil {
			log.Warn().Err(err).Str("rule", rule).Msg("Skipping invalid error rule")
			continue
		}
		d.programs = append(d.programs, prog)
	}
	return d
}

// IsError reports whether the event carries an error signal.
func (d *Detector) IsError(ev models.Event) bool {
	if heuristicError(ev) {
		return true
	}
	if len(d.programs) == 0 {
		return false
	}

	env := ruleEnv(ev)
	for _, prog := range d.programs {
		out, err := expr.Run(prog, env)
		if err != nil {
			continue // rule doesn't apply to this payload shape
		}
		if matched, ok := out.(bool); ok && matched {
			return true
		}
	}
	return false
}

func ruleEnv(ev models.Event) map[string]interface{} {
	env := map[string]interface{}{
		"vendor":   ev.Vendor,
		"type":     ev.Type,
		"payload":  ev.Payload,
		"logLevel": "",
		"status":   0,
	}
	if lvl, ok := ev.Payload["logLevel"].(string); ok {
		env["logLevel"] = strings.ToLower(lvl)
	}
	if status, ok := numericField(ev.Payload["status"]); ok {
		env["status"] = status
	}
	return env
}

func heuristicError(ev models.Event) bool {
	if strings.Contains(strings.ToLower(ev.Type), "error") {
		return true
	}
	if lvl, ok := ev.Payload["logLevel"].(string); ok {
		switch strings.ToLower(lvl) {
		case "error", "fatal":
			return true
		}
	}
	if status, ok := numericField(ev.Payload["status"]); ok && status >= 400 {
		return true
	}
	if src, ok := ev.Payload["ACPExtensionEventSource"].(string); ok {
		if strings.Contains(strings.ToLower(src), "error") {
			return true
		}
	}
	return false
}

func numericField(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}
