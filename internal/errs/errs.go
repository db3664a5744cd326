package errs

import "fmt"

// ErrorMessage is the base carrier embedded by every typed error.
type ErrorMessage struct {
	Message string
}

func (e ErrorMessage) Error() string {
	return e.Message
}

// ValidationError reports input that fails the transaction field rules.
type ValidationError struct {
	ErrorMessage
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(message string) ValidationError {
	return ValidationError{ErrorMessage{Message: message}}
}

// DuplicateTransactionError reports a create for a transaction_id that is
// already stored.
type DuplicateTransactionError struct {
	ErrorMessage
	TransactionID string
}

// NewDuplicateTransactionError returns a DuplicateTransactionError for the
// given transaction_id.
func NewDuplicateTransactionError(transactionID string) DuplicateTransactionError {
	return DuplicateTransactionError{
		ErrorMessage:  ErrorMessage{Message: fmt.Sprintf("transaction %q already exists", transactionID)},
		TransactionID: transactionID,
	}
}

// NotFoundError reports an operation on a transaction_id that is not stored.
type NotFoundError struct {
	ErrorMessage
	TransactionID string
}

// NewNotFoundError returns a NotFoundError for the given transaction_id.
func NewNotFoundError(transactionID string) NotFoundError {
	return NotFoundError{
		ErrorMessage:  ErrorMessage{Message: fmt.Sprintf("transaction %q not found", transactionID)},
		TransactionID: transactionID,
	}
}

// StorageError wraps a lower-level database failure with the operation that
// hit it.
type StorageError struct {
	ErrorMessage
	Op  string
	Err error
}

// NewStorageError wraps err as a StorageError for the named operation.
func NewStorageError(op string, err error) StorageError {
	return StorageError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("storage failure during %s: %v", op, err)},
		Op:           op,
		Err:          err,
	}
}

func (e StorageError) Unwrap() error {
	return e.Err
}
