/*
Package ports defines the driven ports (interfaces) for the staircase engine.

These interfaces decouple the scheduler core from external collaborators: the
adaptive procedures themselves, the data sink that collects experiment data,
and the source that supplies condition lists.

# Key Interfaces

  - AdaptiveProcedure: One staircase (e.g. a QUEST implementation).
  - ProcedureFactory: Builds one procedure per validated condition.
  - DataSink: Receives per-response experiment data.
  - ConditionSource: Resolves a resource name into a condition list.
*/
package ports
