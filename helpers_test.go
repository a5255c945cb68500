package flagprune

import (
	"context"
	"testing"

	"github.com/flagprune/flagprune/internal/source"
	"github.com/stretchr/testify/require"
)

// mustParse parses src as a complete source file and fails the test
// immediately on any parse error.
func mustParse(t *testing.T, src string) *ParsedUnit {
	t.Helper()
	unit, err := source.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return &ParsedUnit{Path: "test.ts", Unit: unit}
}

// findFirstCall returns the first call_expression node found in a
// pre-order walk of unit's tree.
func findFirstCall(t *testing.T, unit *ParsedUnit) *source.Node {
	t.Helper()
	var found *source.Node
	source.Walk(unit.Root(), func(n *source.Node, _ []*source.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == "call_expression" {
			found = n
			return false
		}
		return true
	})
	require.NotNil(t, found, "no call_expression found in %q", src(unit))
	return found
}

func src(unit *ParsedUnit) string {
	return string(unit.Source())
}
