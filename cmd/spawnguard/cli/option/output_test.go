package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Output_PostLoad(t *testing.T) {
	o := Output{Format: "JSON"}
	require.NoError(t, o.PostLoad())
	assert.True(t, o.Is(JSON))

	o = DefaultOutput()
	require.NoError(t, o.PostLoad())
	assert.True(t, o.Is(Table))

	o = Output{Format: "xml"}
	require.Error(t, o.PostLoad())
}
