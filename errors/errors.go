package errors

import "fmt"

var (
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrDeleteForbidden  = fmt.Errorf("only the sender may delete a message")
	ErrIdentityNotFound = fmt.Errorf("identity not found")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)
