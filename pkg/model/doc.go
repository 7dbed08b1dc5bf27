// Package model implements the Web of Things Thing Description data model.
//
// # Model Hierarchy
//
// A Thing is the root of the graph. Every repeated field is a
// collection.List of caller-owned records:
//
//	Thing (lamp)
//	├── @context entries
//	├── securityDefinitions (key > SecurityScheme)
//	├── properties
//	│   └── PropertyAffordance (status)
//	│       ├── DataSchema
//	│       └── Forms > Extensions
//	├── actions
//	│   └── ActionAffordance (toggle)
//	├── events
//	├── links
//	└── forms
//
// # Ownership
//
// The model never copies or frees a record. Adding links a record into a
// list, removing only unlinks it. A record may be listed in more than one
// list, e.g. a SecurityDefinition listed on the Thing and referenced by a
// Form.
//
// # Variants
//
// Security schemes and data-schema payloads are sum types. A
// SecurityScheme carries one SchemeDetails variant (BasicScheme,
// DigestScheme, ...); a DataSchema carries one SchemaPayload variant
// (ObjectSchema, ArraySchema, ...) and its JSON type follows from it.
//
// The model is not safe for concurrent use. Callers that mutate a Thing
// while it is being served coordinate access themselves.
package model
