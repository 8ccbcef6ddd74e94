package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"configbot"
)

// Local serves documents to the bot in-process, answering the way the store
// service would: a missing document is a 404 StoreError with the same body.
type Local struct {
	kind  Kind
	store Store
}

func NewLocal(kind Kind, st Store) *Local {
	return &Local{kind: kind, store: st}
}

func (l *Local) Fetch(ctx context.Context, app configbot.App) (json.RawMessage, error) {
	data, err := l.store.Load(ctx, app.String())
	if errors.Is(err, ErrNotFound) {
		payload, _ := json.Marshal(map[string]string{"error": l.kind.notFoundMessage(app.String())})
		return nil, &configbot.StoreError{Store: l.kind.Name, App: app.String(), StatusCode: http.StatusNotFound, Payload: payload}
	}
	if err != nil {
		return nil, err
	}

	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		payload, _ := json.Marshal(map[string]string{"error": l.kind.invalidMessage(err)})
		return nil, &configbot.StoreError{Store: l.kind.Name, App: app.String(), StatusCode: http.StatusInternalServerError, Payload: payload}
	}
	return json.RawMessage(data), nil
}

// String names the backend in logs.
func (l *Local) String() string {
	return fmt.Sprintf("local %s store", l.kind.Name)
}
