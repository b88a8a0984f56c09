//go:build tools

package main

// Build-time tooling kept versioned with the module. swag generates the
// OpenAPI document from the inbound handler annotations.
import (
	_ "github.com/swaggo/swag/v2"
)
