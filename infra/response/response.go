package response

import (
	"encoding/json"
	"net/http"
)

// Response is a standardized API response structure
type Response struct {
	Code     int      `json:"code"`
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Data     any      `json:"data,omitempty"`
}

// WriteJSON encodes data as the JSON body of the response
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// Success writes a successful response with data
func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	resp := Response{
		Code:    statusCode,
		Success: true,
		Message: message,
		Data:    data,
	}
	_ = WriteJSON(w, statusCode, resp)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := Response{
		Code:    statusCode,
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	_ = WriteJSON(w, statusCode, resp)
}

// Messages writes an unsuccessful response carrying user-facing messages,
// such as gateway decline reasons or checkout form warnings
func Messages(w http.ResponseWriter, statusCode int, message string, messages []string, data any) {
	_ = WriteJSON(w, statusCode, Response{
		Code:     statusCode,
		Success:  false,
		Message:  message,
		Messages: messages,
		Data:     data,
	})
}
