// Package connection retries connection attempts to a Thing.
//
// Dialing a Thing that is still starting up, or one that just restarted
// after a configuration change, fails transiently. Retry keeps trying with
// exponential backoff:
//
//  1. Initial delay: 250 milliseconds
//  2. Exponential increase: 500ms, 1s, 2s, 4s
//  3. Maximum delay: 10 seconds
//
// # Jitter
//
// Clients browsing the same network tend to start at the same time, so every
// delay is stretched by a random amount:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// Errors marked with Permanent stop the retries immediately.
package connection
