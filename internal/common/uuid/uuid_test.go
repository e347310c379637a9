package uuid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := New()
	assert.True(t, IsUUIDv7(id))
	assert.NotEqual(t, Nil, id)
	assert.True(t, GetTimestampFromUUID(id).After(before))

	parsed, err := Parse(id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}
