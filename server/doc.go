// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package server is the acceptor facade: it owns the listening
// socket, distributes accepted connections across reactor workers by
// free capacity, and routes finished responses back to the worker
// handling each connection.
package server
