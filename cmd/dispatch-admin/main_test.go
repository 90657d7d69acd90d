package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsCoverUsageListing(t *testing.T) {
	cmds := commands()
	for _, name := range []string{"migrate", "seed", "list", "show", "transition", "stats"} {
		cmd, ok := cmds[name]
		require.True(t, ok, "command %q missing from table", name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
	assert.Len(t, cmds, 6)
}

func TestWriteLinef(t *testing.T) {
	var buf bytes.Buffer
	writeLinef(&buf, "  %-12s %s", "seed", "Seed development data")
	got := buf.String()
	assert.True(t, strings.HasSuffix(got, "\n"))
	assert.Contains(t, got, "seed        ")
	assert.Contains(t, got, "Seed development data")
}
