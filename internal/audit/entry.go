// Package audit records who did what, when and on which endpoint.
//
// Every entry is written immediately as one structured log line.  When a
// Sink is configured the entry is also forwarded in the background, for
// example to RabbitMQ where StartConsumer appends it to logs/audit.log.
// Recording never blocks or fails the request that triggered it.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/production-manager/internal/model"
)

// QueueName is the durable RabbitMQ queue carrying audit entries.
const QueueName = "audit.operations"

// Entry is one audited operation.
type Entry struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Method    string     `json:"method"`
	Endpoint  string     `json:"endpoint"`
	UserID    uint64     `json:"user_id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Action    string     `json:"action"`
	Details   string     `json:"details,omitempty"`
}

// FormatLine renders e as a single human-readable line without a trailing
// newline:
//
//	[2025-01-02T15:04:05Z] ana@example.com (admin) | POST /api/clientes | Crear cliente | id=7
func FormatLine(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%s) | %s %s | %s",
		e.Timestamp.UTC().Format(time.RFC3339), e.Email, e.Role, e.Method, e.Endpoint, oneLine(e.Action))
	if e.Details != "" {
		b.WriteString(" | ")
		b.WriteString(oneLine(e.Details))
	}
	return b.String()
}

// oneLine keeps user-provided text from breaking the line format.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
