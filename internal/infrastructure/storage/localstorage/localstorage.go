//go:build js && wasm

// Package localstorage adapts window.localStorage to storage.KeyValue for the
// browser build of the engagement widget.
package localstorage

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
)

// Area is the origin's local storage.
type Area struct {
	storage js.Value
}

// New returns the window's local storage, or an error when the browser has
// disabled it (private modes, sandboxed frames).
func New() (area *Area, err error) {
	defer func() {
		if r := recover(); r != nil {
			area, err = nil, fmt.Errorf("local storage unavailable: %v", r)
		}
	}()

	s := js.Global().Get("localStorage")
	if !s.Truthy() {
		return nil, fmt.Errorf("local storage unavailable")
	}
	return &Area{storage: s}, nil
}

func (a *Area) GetItem(_ context.Context, key string) (value string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read %s: %v", key, r)
		}
	}()

	v := a.storage.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (a *Area) SetItem(_ context.Context, key, value string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok && jsErr.Get("name").String() == "QuotaExceededError" {
				err = storage.ErrQuotaExceeded
				return
			}
			err = fmt.Errorf("failed to write %s: %v", key, r)
		}
	}()

	a.storage.Call("setItem", key, value)
	return nil
}

func (a *Area) RemoveItem(_ context.Context, key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to remove %s: %v", key, r)
		}
	}()

	a.storage.Call("removeItem", key)
	return nil
}
