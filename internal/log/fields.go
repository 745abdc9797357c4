package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldExpenseID   = "expense_id"
	FieldParkedID    = "parked_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldIsWant      = "is_want"
	FieldMonth       = "month"
	FieldTaxCents    = "tax_cents"

	FieldGeneration = "generation"
	FieldAssetKey   = "asset_key"
	FieldAssetCount = "asset_count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentBackup  = "backup"
	ComponentOffline = "offline"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpConvert  = "convert"
	OpClear    = "clear"
	OpExport   = "export"
	OpImport   = "import"
	OpInstall  = "install"
	OpActivate = "activate"
	OpFetch    = "fetch"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
