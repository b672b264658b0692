// Package provider implements locpatch gateways backed by AI models.
package provider

import "github.com/ZaguanLabs/locpatch"

// Gateway is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type Gateway = locpatch.Gateway

// BatchRequest is an alias to the main package type.
type BatchRequest = locpatch.BatchRequest

// SingleRequest is an alias to the main package type.
type SingleRequest = locpatch.SingleRequest
