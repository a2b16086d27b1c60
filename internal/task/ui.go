package task

// Dispatcher runs fn on the UI goroutine, after every function
// dispatched before it. Dispatch may be called from any goroutine and
// must not drop work.
type Dispatcher interface {
	Dispatch(fn func())
}

// Indicator is a progress indicator that is shown while tasks run.
type Indicator interface {
	SetVisible(visible bool)
}

// Control is a UI element that is disabled while its task runs.
type Control interface {
	SetDisabled(disabled bool)
}

// StatusSink displays a short status line.
type StatusSink interface {
	ShowStatus(message string)
	ClearStatus()
}

// Alerter shows an error to the user.
type Alerter interface {
	Alert(title, message string)
}
