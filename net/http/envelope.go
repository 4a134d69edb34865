package http

// Envelope transforms a document before it gets encoded.
// code is the response status code and message is set on errors, for
// instance "400 id: Required".
type Envelope func(v interface{}, code int, message string) interface{}

// Identity is the default envelope. It returns the document unchanged.
func Identity(v interface{}, code int, message string) interface{} {
	return v
}

// StatusEnvelope wraps every document with its status
//
//	{"status": 200, "message": null, "data": {...}}
func StatusEnvelope(v interface{}, code int, message string) interface{} {
	var msg interface{}
	if message != "" {
		msg = message
	}
	return map[string]interface{}{
		"status":  code,
		"message": msg,
		"data":    v,
	}
}
