// Package message defines the Message routed by the gateway.
//
// A Message carries an optional explicit Destination (a connector id) and a
// Status. Routers only ever move a message to StatusUnroutable; every other
// transition belongs to whoever delivers the message.
//
// Acceptors inspect messages through Field, which resolves built-in fields by
// name and properties as "properties.<key>":
//
//	v, err := msg.Field("properties.priority")
//
// Envelope is the transport carrier handed to the timed routing entry point.
package message
