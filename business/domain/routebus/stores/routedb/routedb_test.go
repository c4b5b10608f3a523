package routedb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Routing selection happens inside the query: when more than one record
// matches a domain, the highest priority must win and creation time must
// break ties.
func TestQueryByDomainSelectionRule(t *testing.T) {
	q := strings.Join(strings.Fields(queryByDomainSQL), " ")

	assert.Contains(t, q, "ORDER BY priority DESC, created_at ASC LIMIT 1")
}
