package catalog

import "codeberg.org/mutker/nvme-exporter/internal/errors"

const (
	ErrInvalidDBPath          = errors.ErrorCode("invalid_db_path")
	ErrInvalidBatch           = errors.ErrorCode("invalid_batch_config")
	ErrCatalogDisabled        = errors.ErrorCode("catalog_disabled")
	ErrStorageInit            = errors.ErrorCode("storage_init_failed")
	ErrStorageClose           = errors.ErrorCode("storage_close_failed")
	ErrTransactionFailed      = errors.ErrorCode("transaction_failed")
	ErrQueryFailed            = errors.ErrorCode("query_failed")
	ErrSchemaInitFailed       = errors.ErrorCode("schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("schema_migration_failed")
)
