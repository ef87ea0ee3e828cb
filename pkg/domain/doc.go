/*
Package domain contains the core domain models for the staircase engine.

It defines the fundamental entities of adaptive trial sequencing: Trials,
Snapshots, Conditions, the staircase/selection enums, structured errors, and
lifecycle events. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Trial: One row of an experimental design (variable name -> value).
  - Snapshot: A per-trial, cursor-independent view of iteration state,
    read by data sinks after the run has already moved on.
  - Condition: The immutable configuration for a single adaptive procedure.
  - RunError: A structured error carrying origin, context and cause.
*/
package domain
