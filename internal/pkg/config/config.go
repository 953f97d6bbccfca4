// Package config reads service settings from a YAML file with environment
// overrides and notifies subscribers when the file changes.
package config

import (
	"io"
	"time"
)

// Config retrieves typed configuration values. Missing keys yield zero values.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint32(key string) uint32
	GetFloat64(key string) float64

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray reads a YAML list or a "<e1>,<e2>,..." string. Blank
	// elements are dropped.
	GetArray(key string) []string

	// GetMap reads a "<k1>:<v1>,<k2>:<v2>,..." string.
	GetMap(key string) map[string]string

	// IsSet reports whether key has a value in any source.
	IsSet(key string) bool

	// OnChange registers fn to run after the backing file is reloaded.
	OnChange(fn func())
}
