// Package rove provides declarative object-query evaluation machinery.
//
// The core code is in package 'core', and some command-line tools are in `cmd`.
//
// See https://github.com/Comcast/rove/blob/master/README.md for more.
package rove
