package wire

// Operation represents a request operation on a Thing.
type Operation uint8

const (
	// OpGetDescription retrieves one block of the Thing Description.
	OpGetDescription Operation = 1

	// OpReadProperty reads the current value of a property.
	OpReadProperty Operation = 2

	// OpWriteProperty replaces the value of a property.
	OpWriteProperty Operation = 3

	// OpInvokeAction invokes an action with an optional input.
	OpInvokeAction Operation = 4
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpGetDescription:
		return "GetDescription"
	case OpReadProperty:
		return "ReadProperty"
	case OpWriteProperty:
		return "WriteProperty"
	case OpInvokeAction:
		return "InvokeAction"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the operation is known.
func (o Operation) IsValid() bool {
	return o >= OpGetDescription && o <= OpInvokeAction
}

// NeedsTarget reports whether the operation addresses an affordance.
func (o Operation) NeedsTarget() bool {
	return o != OpGetDescription
}
