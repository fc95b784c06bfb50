// Package router decides where a message goes.
//
// # Algorithm
//
// A Router reads its connector.Catalog on every call:
//
//  1. If the message names a destination, that connector service is used
//     when it exists, has the processor capability and supports the message.
//     Acceptors are skipped.
//  2. Otherwise services are scanned in catalog order. The first one that
//     supports the message and has an acceptor that accepts it wins.
//     Acceptors run in order and stop at the first acceptance; one that
//     returns an error or panics is logged and counted as a rejection.
//
// When nothing qualifies the message status becomes StatusUnroutable and the
// unroutable URI is returned. Otherwise the URI is the prefix followed by the
// connector ID and the message is left untouched.
//
// # Variants
//
// NewConnectionsRouter and NewApplicationsRouter configure the same Router
// over the connections and applications sections of a registry.
//
// # Entry Point
//
// Timed wraps a Router for the dispatch layer: it unwraps a Carrier, times
// the decision, feeds metrics and observers, and never fails.
package router
