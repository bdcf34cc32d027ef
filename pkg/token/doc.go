// Package token provides session token generation and validation utilities.
//
// Token Format:
//
//   - Length: 32 characters (default)
//   - Alphabet: 0-9A-F (uppercase hexadecimal, case-sensitive)
//
// Tokens are opaque session identifiers: they are generated once, never
// mutated, and compared by exact string match. Generation uses crypto/rand,
// so concurrent callers need no coordination. Uniqueness across calls is
// probabilistic; at 32 characters (128 bits) collisions are negligible for
// test-scale populations.
package token
