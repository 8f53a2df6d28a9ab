package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.True(t, strings.HasPrefix(info, "nestgroup "+Version+" "))
	assert.Contains(t, info, "commit: "+Commit)
	assert.Equal(t, Version, Short())
}
