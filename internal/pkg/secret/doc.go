// Package secret provides an opaque container for sensitive values.
//
// An Envelope never prints, logs or serializes its content. Code that needs the
// raw bytes must call Open explicitly, which keeps every disclosure site easy
// to find with a grep.
package secret
