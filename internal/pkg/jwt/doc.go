// Package jwt verifies the bearer tokens that authorize vault calls.
//
// Tokens are HS512 signed. The subject becomes the actor recorded on
// credential changes and the space separated scope claim gates the routes.
package jwt
