package chat

// toastNotifier bridges dispatcher outcomes onto the event loop as
// transient status toasts. Dispatcher methods run inside command
// goroutines, so delivery goes through a channel the model pumps.
type toastNotifier struct {
	ch chan toastMsg
}

func newToastNotifier() *toastNotifier {
	return &toastNotifier{ch: make(chan toastMsg, 16)}
}

func (t *toastNotifier) Success(text string) {
	select {
	case t.ch <- toastMsg{text: text}:
	default:
	}
}

func (t *toastNotifier) Failure(text string) {
	select {
	case t.ch <- toastMsg{text: text, isErr: true}:
	default:
	}
}
