package dto

// Envelope is the uniform result object returned to the API layer:
// {success, message, data|error}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(message string, err string) Envelope {
	return Envelope{Success: false, Message: message, Error: err}
}
