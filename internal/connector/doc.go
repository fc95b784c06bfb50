// Package connector holds the connector services routers choose between.
//
// # Services
//
// A Service pairs a Connector with an ordered list of acceptors. Whether the
// connector can take messages at all is its Processor capability, resolved
// once by NewService:
//
//	svc := connector.NewService("sms-gw", connector.NewConsole(os.Stdout, "sms"),
//	    acceptor.Always{})
//	if p, ok := svc.Processor(); ok && p.Supports(msg) {
//	    ...
//	}
//
// # Registry
//
// Registry keeps two sections, Connections (outbound) and Applications
// (inbound). Each section is ordered by ascending Priority; services with the
// same priority keep registration order. Catalog returns a view that routers
// read from; every call takes a fresh snapshot so services added or removed
// between calls are picked up, and a lookup racing a removal simply reports
// not found.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Services are treated as immutable once
// registered; to change one, Remove and Add it again or Replace the section.
package connector
