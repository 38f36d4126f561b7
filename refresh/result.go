package refresh

// Result is the outcome delivered to every waiter of a refresh episode:
// either the new access credential or the failure.
type Result struct {
	Access string
	Err    error
}

func Resumed(access string) Result {
	return Result{Access: access}
}

func Failed(err error) Result {
	return Result{Err: err}
}

// OK reports whether the waiter can replay its call.
func (r Result) OK() bool {
	return r.Err == nil
}
