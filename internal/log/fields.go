package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldEmail     = "email"
	FieldRecordID  = "record_id"
	FieldKind      = "kind"
	FieldItem      = "item"
	FieldAmount    = "amount"
	FieldBalance   = "balance"
	FieldKey       = "key"
	FieldBackend   = "backend"
	FieldPostID    = "post_id"
	FieldAuthor    = "author"
	FieldSheetsRef = "sheets_ref"
	FieldTopic     = "topic"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentLedger    = "ledger"
	ComponentCommunity = "community"
	ComponentStorage   = "storage"
	ComponentBackend   = "backend"
	ComponentAMQP      = "amqp"
	ComponentKafka     = "kafka"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentAssistant = "assistant"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpAppend   = "append"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpExport   = "export"
	OpPost     = "post"
	OpLike     = "like"
	OpComment  = "comment"
	OpAsk      = "ask"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the fields identifying one ledger record.
func (f LogFields) WithRecord(email, id, kind, item string, amount, balance float64) LogFields {
	f[FieldEmail] = email
	f[FieldRecordID] = id
	f[FieldKind] = kind
	f[FieldItem] = item
	f[FieldAmount] = amount
	f[FieldBalance] = balance
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
