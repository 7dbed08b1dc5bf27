package model

import "github.com/wot-td/wot-go/pkg/collection"

// InteractionAffordance holds the fields shared by properties, actions
// and events.
type InteractionAffordance struct {
	Types        TypeList
	Titles       MultiLangList
	Descriptions MultiLangList
	URIVariables SchemaMap
	Forms        FormList
}

// PropertyAffordance exposes state of the Thing.
type PropertyAffordance struct {
	Key        string
	Observable bool
	Schema     *DataSchema
	InteractionAffordance
}

// ActionAffordance exposes a function of the Thing.
type ActionAffordance struct {
	Key        string
	Input      *DataSchema
	Output     *DataSchema
	Safe       bool
	Idempotent bool
	InteractionAffordance
}

// EventAffordance describes an event source of the Thing.
type EventAffordance struct {
	Key          string
	Subscription *DataSchema
	Data         *DataSchema
	Cancellation *DataSchema
	InteractionAffordance
}

// Affordance list aliases.
type (
	PropertyList = collection.List[PropertyAffordance]
	ActionList   = collection.List[ActionAffordance]
	EventList    = collection.List[EventAffordance]
)
