package bot

// LoginError is returned when the authentication flow fails at any step
type LoginError struct {
	Stage string
	Err   error
}

func (e *LoginError) Error() string {
	return "Login failed: " + e.Err.Error()
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// ReplyError is returned when navigating to the thread, finding the reply box
// or submitting the reply fails. Its message is the cause's message.
type ReplyError struct {
	Stage string
	Err   error
}

func (e *ReplyError) Error() string {
	return e.Err.Error()
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}
