// Package schema provides the model and property descriptor registry.
//
// Every persisted entity is described by a Model: an ordered set of typed
// Property descriptors keyed by stable storage names. Models replace
// language reflection - expressions reference *Property tokens directly,
// so a query over a property the model never declared cannot be built.
//
// A Model always carries an "id" primary-key property (INTEGER). Scalar
// properties map 1:1 to columns. To-one relationships map to a foreign-key
// column on the declaring table; to-many relationships contribute no
// column (the foreign key lives on the related table).
//
// Model.Definition derives the on-disk TableDef used for both table
// creation and structural compatibility checks. Compatibility is exact:
// same column names, types, nullability, and primary-key flags.
//
// Models can also be declared in YAML (see LoadYAML), which the CLI uses
// to verify a store file against a declared schema.
package schema
