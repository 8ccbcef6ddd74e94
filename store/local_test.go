package store

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"configbot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Fetch(t *testing.T) {
	st := NewTestStore(map[string][]byte{
		"chat":        []byte(`{"replicas":1}`),
		"matchmaking": []byte(`nope`),
	})
	local := NewLocal(Values, st)

	doc, err := local.Fetch(context.Background(), configbot.AppChat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"replicas":1}`, string(doc))

	_, err = local.Fetch(context.Background(), configbot.AppTournament)
	var se *configbot.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.JSONEq(t, `{"error":"Values not found for application: tournament"}`, string(se.Payload))

	_, err = local.Fetch(context.Background(), configbot.AppMatchmaking)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, string(se.Payload), "Invalid JSON in values file")

	boom := errors.New("io error")
	_, err = NewLocal(Values, NewTestStoreWithError(boom)).Fetch(context.Background(), configbot.AppChat)
	assert.ErrorIs(t, err, boom)
}
