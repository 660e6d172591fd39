package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

const defaultQuantity = 1

type CreateTicketRequest struct {
	Event    uint `json:"event" example:"1"`
	Quantity *int `json:"quantity" example:"2"`
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Event, validation.Required),
		validation.Field(&req.Quantity, validation.By(positive)),
	)
}

// positive rejects an explicit zero, which validation.Min treats as empty.
func positive(value interface{}) error {
	q, _ := value.(*int)
	if q != nil && *q < 1 {
		return errors.New("must be no less than 1")
	}
	return nil
}

// QuantityOrDefault returns the requested quantity, 1 when omitted.
func (req *CreateTicketRequest) QuantityOrDefault() int {
	if req.Quantity == nil {
		return defaultQuantity
	}
	return *req.Quantity
}
