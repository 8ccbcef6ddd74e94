// Package store serves read-only JSON documents keyed by application name.
// The same code backs the schema store and the values store; a Kind selects
// the file suffix and the wording of error bodies.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("document not found")

// Store loads the raw bytes of the document stored under name.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

type Kind struct {
	Name    string // "schema" or "values"
	Suffix  string
	Service string
	title   string
}

var (
	Schema = Kind{Name: "schema", Suffix: ".schema.json", Service: "schema-service", title: "Schema"}
	Values = Kind{Name: "values", Suffix: ".value.json", Service: "values-service", title: "Values"}
)

// Key returns the file or object name of the document for app.
func (k Kind) Key(app string) string {
	return app + k.Suffix
}

func (k Kind) notFoundMessage(app string) string {
	return fmt.Sprintf("%s not found for application: %s", k.title, app)
}

func (k Kind) invalidMessage(err error) string {
	return fmt.Sprintf("Invalid JSON in %s file: %s", k.Name, err)
}

// validName rejects names that would escape the store's directory or prefix.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// TestStore is a simple in-memory implementation for testing
type TestStore struct {
	docs  map[string][]byte
	err   error
	Calls int
}

func NewTestStore(docs map[string][]byte) *TestStore {
	return &TestStore{docs: docs}
}

func NewTestStoreWithError(err error) *TestStore {
	return &TestStore{err: err}
}

func (t *TestStore) Load(ctx context.Context, name string) ([]byte, error) {
	t.Calls++
	if t.err != nil {
		return nil, t.err
	}
	data, ok := t.docs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return data, nil
}
