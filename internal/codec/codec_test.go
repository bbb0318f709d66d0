package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/internal/codec"
	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

func TestNew(t *testing.T) {
	for name, want := range map[string]string{
		"":     "json",
		"json": "json",
		"cbor": "cbor",
	} {
		cd, err := codec.New(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, cd.Name())
	}

	_, err := codec.New("xml")
	assert.Error(t, err)
}

func TestFrameKinds(t *testing.T) {
	assert.False(t, codec.JSON{}.Binary())
	assert.True(t, codec.CBOR{}.Binary())
}

func TestRequestRoundTrip(t *testing.T) {
	for _, cd := range []codec.Codec{codec.JSON{}, codec.CBOR{}} {
		t.Run(cd.Name(), func(t *testing.T) {
			req := protocol.Request[protocol.CreateCardParams]{
				ID:     "r1",
				Method: protocol.MethodCreateCard,
				Params: protocol.CreateCardParams{
					ColumnID: models.NewColumnID(),
					Title:    "task",
				},
			}
			data, err := cd.Marshal(req)
			require.NoError(t, err)

			// The envelope probe and the typed decode both read the same
			// bytes.
			var env protocol.Envelope
			require.NoError(t, cd.Unmarshal(data, &env))
			assert.Equal(t, "r1", env.ID)
			assert.Equal(t, protocol.MethodCreateCard, env.Method)

			var got protocol.Request[protocol.CreateCardParams]
			require.NoError(t, cd.Unmarshal(data, &got))
			assert.Equal(t, req, got)
		})
	}
}

func TestNotificationHasNoID(t *testing.T) {
	for _, cd := range []codec.Codec{codec.JSON{}, codec.CBOR{}} {
		t.Run(cd.Name(), func(t *testing.T) {
			n := protocol.Notification[protocol.PresenceEvent]{
				Method: protocol.EventUserJoined,
				Params: protocol.PresenceEvent{Username: "ada"},
			}
			data, err := cd.Marshal(n)
			require.NoError(t, err)

			var env protocol.Envelope
			require.NoError(t, cd.Unmarshal(data, &env))
			assert.Empty(t, env.ID, "broadcasts are not acknowledgements")
			assert.Equal(t, protocol.EventUserJoined, env.Method)
		})
	}
}
