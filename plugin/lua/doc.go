// Package lua wraps the gopher-lua runtime that plugin units execute in.
//
// Each plugin unit owns one State. A State opens only the safe subset of the
// Lua standard library (base, table, string, math) and converts Lua panics
// into errors. Bridge converts values between Go and Lua in both directions.
//
// A State is not goroutine-safe at the Lua level; operations are serialized
// by an internal mutex, but a running chunk cannot be interrupted.
package lua
