package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition - операция вызвана в неподходящем состоянии (ошибка программиста)
	ErrPrecondition = errors.New("нарушено предусловие")
	// ErrBusy - предыдущее изменение коллекции еще выполняется
	ErrBusy = errors.New("предыдущая операция еще выполняется")
)

// PreconditionError описывает вызов операции в неподходящем состоянии
type PreconditionError struct {
	Op    string
	State State
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: буфер редактирования в состоянии %s", ErrPrecondition, e.Op, e.State)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrPrecondition)
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}
