package redis

import "strings"

const keyNamespace = "pq"

// ReconcileLockKey names the lock serialising row writes for one configuration group,
// e.g. pq:lock:reconcile:<configuration>:<group>.
func (c *Client) ReconcileLockKey(configurationID, group string) string {
	return joinKey("lock", "reconcile", configurationID, group)
}

func joinKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
