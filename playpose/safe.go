/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import "fmt"

// Try runs fn and turns a panic into an error.
func Try(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playpose: recovered: %v", r)
		}
	}()

	return fn()
}

// OrDefault returns fn's value, or def if fn fails or panics.
func OrDefault[T any](fn func() (T, error), def T) T {
	var v T

	err := Try(func() error {
		var err error
		v, err = fn()
		return err
	})
	if err != nil {
		return def
	}

	return v
}
