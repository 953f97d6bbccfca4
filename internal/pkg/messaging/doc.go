// Package messaging publishes credential change events to a message broker.
//
// The driver is picked at startup by name (see NewFromDriver). Every driver
// accepts the same OutgoingMessage; options a broker cannot honor return
// ErrUnsupported instead of being silently dropped.
package messaging
