package response

import "github.com/vietanh2810/eventbooking-api/internal/domain"

type LoginResponse struct {
	Access   string      `json:"access"`
	UserType domain.Role `json:"user_type"`
}
