package dto

import "encoding/json"

// Envelope é o formato padrão de resposta do backend: {success, message, data}
// Em erros de token o backend manda "errors" com o texto.
type Envelope struct {
	Success bool            `json:"success"`
	Message *string         `json:"message"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Data    json.RawMessage `json:"data"`
}
