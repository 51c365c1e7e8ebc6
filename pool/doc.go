// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-size byte buffer pooling for the worker read path. One pool
// per worker amortizes the 16 KiB read-buffer allocation across
// readiness events.
package pool
