// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package protocol holds the HTTP response model handed to the worker
// core for transmission. Only the wire-format rendering lives here;
// request parsing and method dispatch belong to the handler layer.
package protocol
