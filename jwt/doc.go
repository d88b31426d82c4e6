// Package jwt manages access and refresh token issuance and verification using
// separate signing secrets per token class and strict validation semantics
// suitable for low-latency authentication paths.
package jwt
