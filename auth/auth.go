// Package auth builds Bolt Init auth-token maps.
package auth

import "github.com/Gudahtt/bolt/packstream"

// Basic builds the "basic" scheme auth token Init expects:
// {scheme: "basic", principal: <username>, credentials: <password>}.
func Basic(username, password string) packstream.Value {
	return packstream.Map(
		packstream.Pair{Key: "scheme", Value: packstream.String("basic")},
		packstream.Pair{Key: "principal", Value: packstream.String(username)},
		packstream.Pair{Key: "credentials", Value: packstream.String(password)},
	)
}

// None builds an empty auth token, for servers with authentication disabled.
func None() packstream.Value {
	return packstream.Map()
}
