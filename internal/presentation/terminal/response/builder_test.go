package response

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	var buf bytes.Buffer
	err := New(&buf).
		WithTitle("Orders").
		WithColumns("ID", "Customer").
		WithRow("1", "Alice").
		WithRow("12", "Bob\tthe\nBuilder").
		WithEmpty("No orders found").
		Build()
	require.NoError(t, err)

	want := "Orders\n" +
		"ID   Customer\n" +
		"---  --------\n" +
		"1    Alice\n" +
		"12   Bob the Builder\n"
	assert.Equal(t, want, buf.String())
}

func TestBuildEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).WithColumns("ID").WithEmpty("No orders found").Build())
	assert.Equal(t, "No orders found\n", buf.String())

	buf.Reset()
	require.NoError(t, New(&buf).Build())
	assert.Empty(t, buf.String())
}

func TestBuildMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).WithMessage("Created order #%d", 3).Build())
	assert.Equal(t, "Created order #3\n", buf.String())
}
