// Package auth protects the gateway HTTP API with JWT bearer tokens.
//
// Tokens are HS256 signed with auth.jwt_secret and carry a subject plus a
// list of scopes:
//
//   - route: POST /api/route/{direction}
//   - read:  GET /api/connectors and GET /api/decisions
//
// Mint a token with the CLI:
//
//	mokai token --subject dispatcher --scopes route
//
// When no secret is configured the middleware is a no-op.
package auth
