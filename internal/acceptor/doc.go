// Package acceptor provides the fine-grained filters attached to connector
// services.
//
// An acceptor answers "should this supported message go to my connector?".
// It may also fail to answer: field acceptors return an error when the field
// is missing or holds a map or slice. Routers treat such errors as a
// rejection by that single acceptor and move on.
//
// Available acceptors:
//
//   - Always: accepts everything
//   - Equals: exact field match
//   - Regexp: field matches a regular expression
//   - Glob: field matches a doublestar glob
//   - JSONPath: a path over the message document selects a node
//   - And, Or, Not: composites
package acceptor
