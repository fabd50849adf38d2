// Package auth manages the OAuth client-credentials lifecycle for gcctl:
// acquiring access tokens from the platform login endpoint, persisting the
// single current credential in a file or the OS keychain, and discarding it
// when the API reports it as expired.
package auth
