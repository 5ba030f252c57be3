package main

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-directory/internal/config"
)

// TestVersionString ensures every -ldflags build variable reaches the --version output.
func TestVersionString(t *testing.T) {
	oldVersion, oldCommit, oldDate := config.Version, config.Commit, config.Date
	t.Cleanup(func() { config.Version, config.Commit, config.Date = oldVersion, oldCommit, oldDate })

	config.Version = "1.4.0"
	config.Commit = "abc1234"
	config.Date = "2026-01-15T10:00:00Z"

	out := versionString()

	assert.True(t, strings.HasPrefix(out, config.AppName+" version 1.4.0 "))
	assert.Contains(t, out, "abc1234")
	assert.Contains(t, out, "2026-01-15T10:00:00Z")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	assert.True(t, strings.HasSuffix(out, "\n"))
}
