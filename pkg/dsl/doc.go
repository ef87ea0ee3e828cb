// Package dsl provides a fluent builder for condition sets, as a typed
// alternative to YAML files when conditions are constructed in code.
package dsl
