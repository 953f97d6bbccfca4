package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Increasing(t *testing.T) {
	sf, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	prev := sf.Generate()
	for range 100 {
		next := sf.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}

	_, err = NewSnowflakeWithNode(-1)
	assert.Error(t, err)
}

func TestUUID_Version7(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestObjectID_Unique(t *testing.T) {
	g, err := NewObjectIDGenerator()
	if err != nil {
		t.Skip("no stable node identity:", err)
	}

	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
