package domain

// Result is the outcome of one cart mutation. A rejected mutation (stock
// limit, missing line item) is not an error: it carries Success=false and
// a user-facing message. Infrastructure failures are returned as errors
// alongside a zero Result.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(message string) Result {
	return Result{Success: true, Message: message}
}

func Rejected(message string) Result {
	return Result{Success: false, Message: message}
}
