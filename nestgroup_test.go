package nestgroup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/nestgroup"
)

type panel string

func (p panel) ID() string { return string(p) }

func TestPlugin(t *testing.T) {
	p := nestgroup.NewPlugin()
	assert.Equal(t, "nested-grouping", p.ID())

	p.Register(panel("admin"))
	p.Boot(panel("admin"))
	p.Register(panel("reports"))

	assert.Equal(t, []string{"admin", "reports"}, p.Panels())
}
