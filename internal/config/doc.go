// Package config handles configuration loading for the mokai gateway.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files (chosen by the .toml
// extension) with environment variable expansion, defaults, and validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path given with --config
//  2. Path from MOKAI_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/mokai/gateway.yaml (or ~/.config/mokai/gateway.yaml)
//
// # Environment Variable Expansion
//
//	auth:
//	  jwt_secret: "${MOKAI_JWT_SECRET}"
//
// # Connector Catalog
//
// Connections (outbound) and applications (inbound) are lists of connector
// services. Lower priority values are tried first:
//
//	connections:
//	  - id: colombia-smsc
//	    type: console
//	    priority: 1
//	    supports: [sms]
//	    acceptors:
//	      - type: glob
//	        field: properties.to
//	        pattern: "+57*"
//	  - id: fallback
//	    type: console
//	    priority: 10
//	    acceptors:
//	      - type: always
//
// Acceptor types: always, equals, regexp, glob, jsonpath, and, or, not.
//
// # Routing Endpoints
//
//	routing:
//	  connections:
//	    uri_prefix: "queue:connection-"
//	    unroutable_uri: "queue:unroutable"
//
// Empty values fall back to the router defaults.
//
// # Delivery
//
//	delivery:
//	  enabled: true
//	  dedupe_window: 5m
//	  dedupe_size: 10000
//
// When enabled, routed messages are handed to their connector and message
// ids are remembered for dedupe_window.
//
// # Hot Reload
//
// With reload.enabled the serve command watches the file and swaps the
// catalog after a debounce (default 500ms). Routers pick up the new catalog
// on their next call.
package config
