// Package utils provides bounded concurrent execution and panic recovery
// helpers shared by the pipeline packages.
package utils
