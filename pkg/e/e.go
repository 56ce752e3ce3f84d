package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmbeddingUnavailable = fmt.Errorf("embedding provider returned no vector")
	ErrVectorSizeMismatch   = fmt.Errorf("vector size mismatch")
	ErrStoreQueryFailure    = fmt.Errorf("vector store query failed")

	// Ошибки целостности данных
	ErrSupplierNotResolved = fmt.Errorf("supplier cannot be resolved")
	ErrProductNotFound     = fmt.Errorf("product not found")

	// 400 Bad Request
	ErrStatusBadRequest    = fmt.Errorf("bad request")
	ErrProductNameRequired = fmt.Errorf("product name is required")
	ErrSupplierRequired    = fmt.Errorf("supplier is required")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrPricePrecision      = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidLimit        = fmt.Errorf("limit must be positive")
	ErrInvalidProductID    = fmt.Errorf("invalid product id")
	ErrMissingFields       = fmt.Errorf("missing required fields")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
