package collection

// State - состояние буфера редактирования
type State int

const (
	// StateClosed - буфер закрыт, редактирования нет
	StateClosed State = iota
	// StateOpen - открыт черновик или редактируемая запись
	StateOpen
	// StateSaving - запись отправлена в хранилище, ответ еще не получен
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}
