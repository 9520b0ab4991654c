// Package notifier delivers outbound messages (channel alerts, reminder DMs)
// through an async pipeline: queue, worker pool, rate limit, retry, dedup.
//
// Delivery guarantees differ by kind:
//
//   - alerts are retried with backoff; duplicates inside the dedup window are
//     suppressed
//   - reminder DMs are attempted once, never retried: the dispatcher has
//     already consumed the reminder, and a late duplicate DM is worse than a
//     missed one
package notifier
