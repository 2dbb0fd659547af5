package http

import "github.com/randomtoy/tarotbot/internal/domain"

// TarotRequest is the JSON body of POST /tarot.
type TarotRequest struct {
	Story     string `json:"story"`
	ConfigKey string `json:"config_key"`
}

// TarotResponse is the JSON shape returned by POST /tarot.
type TarotResponse struct {
	Reading domain.Reading     `json:"reading"`
	Cards   []domain.DrawnCard `json:"cards"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ConfigsResponse struct {
	Keys []string `json:"keys"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
