package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type frame struct {
	Kind string `json:"kind"`
	Data []byte `json:"data,omitempty"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON, Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			in := frame{Kind: "InvokeMember", Data: []byte("abc")}
			b, err := c.Marshal(in)
			require.NoError(t, err)

			var out frame
			require.NoError(t, c.Unmarshal(b, &out))
			require.Equal(t, in, out)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	require.Equal(t, "json", c.Name())

	c, err = ByName("msgpack")
	require.NoError(t, err)
	require.Equal(t, "msgpack", c.Name())

	_, err = ByName("xml")
	require.Error(t, err)
}
