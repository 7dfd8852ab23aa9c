package octopus

import "github.com/shopspring/decimal"

// unitRatesResponse is one page of /standard-unit-rates/. Only Results is used,
// Next and Previous are never followed.
type unitRatesResponse struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []rawRate `json:"results"`
}

type rawRate struct {
	ValueExcVat   *decimal.Decimal `json:"value_exc_vat"`
	ValueIncVat   *decimal.Decimal `json:"value_inc_vat"`
	ValidFrom     *string          `json:"valid_from"`
	ValidTo       *string          `json:"valid_to"`
	PaymentMethod *string          `json:"payment_method"`
}
