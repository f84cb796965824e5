package types

// Version is the canonical project version.
// The CLI, record schema, and solver frame format share this constant
// per the lockstep versioning policy.
const Version = "0.3.0"

// RecordSchemaVersion is the persisted record schema version. Bumped
// whenever a stored table gains, loses, or renames a field.
const RecordSchemaVersion = "0.2.0"
