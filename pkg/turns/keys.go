package turns

// Payload keys used inside Block.Payload.
const (
	PayloadKeyText   = "text"
	PayloadKeyID     = "id"
	PayloadKeyName   = "name"
	PayloadKeyArgs   = "args"
	PayloadKeyResult = "result"
	PayloadKeyError  = "error"
)

// Turn metadata keys.
const (
	MetaKeyProvider   = "provider"
	MetaKeyModel      = "model"
	MetaKeyIterations = "iterations"
	MetaKeyTruncated  = "truncated"
	MetaKeyStopReason = "stop_reason"
)
