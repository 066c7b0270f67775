package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "pulse/"+Version, UserAgent())
}

func TestString(t *testing.T) {
	s := String()
	assert.True(t, strings.HasPrefix(s, "pulse "+Version))
	assert.Contains(t, s, GitCommit)
	assert.Contains(t, s, GoVersion)
}
