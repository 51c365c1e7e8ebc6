// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package api defines the contracts between the readiness-multiplexed
// worker core and its collaborators: the platform multiplexer, the
// acceptor that hands off new sockets, and the processing pool that
// turns decoded requests into responses.
package api
