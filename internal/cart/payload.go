package cart

// EventPayload is the Payload of every event the engine publishes.
type EventPayload struct {
	Operation          string            `json:"operation"`
	State              State             `json:"state"`
	LineItemID         string            `json:"lineItemId,omitempty"`
	Item               *LineItem         `json:"item,omitempty"`
	RemovedLineItemIDs []string          `json:"removedLineItemIds,omitempty"`
	Validation         *ValidationResult `json:"validation,omitempty"`
	Merge              *MergeReport      `json:"merge,omitempty"`
	ErrorCode          string            `json:"errorCode,omitempty"`
	Error              string            `json:"error,omitempty"`
}
