package models

// Response codes of a delimited transaction response.
const (
	ResponseApproved = "1"
	ResponseDeclined = "2"
	ResponseError    = "3"
	ResponseHeld     = "4"
)

// TransactionResponse is a delimited (AIM layout) transaction result.
type TransactionResponse struct {
	ResponseCode       string `json:"response_code"`
	ResponseSubcode    string `json:"response_subcode"`
	ResponseReasonCode string `json:"response_reason_code"`
	ResponseReasonText string `json:"response_reason_text"`
	AuthCode           string `json:"auth_code"`
	AVSCode            string `json:"avs_code"`
	TransactionID      string `json:"trans_id"`
	InvoiceNumber      string `json:"invoice_num"`
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	Method             string `json:"method"`
	TransactionType    string `json:"type"`
	CustomerID         string `json:"cust_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Company            string `json:"company"`
	Address            string `json:"address"`
	City               string `json:"city"`
	State              string `json:"state"`
	Zip                string `json:"zip"`
	Country            string `json:"country"`
	Phone              string `json:"phone"`
	Fax                string `json:"fax"`
	Email              string `json:"email"`
	ShipToFirstName    string `json:"ship_to_first_name"`
	ShipToLastName     string `json:"ship_to_last_name"`
	ShipToCompany      string `json:"ship_to_company"`
	ShipToAddress      string `json:"ship_to_address"`
	ShipToCity         string `json:"ship_to_city"`
	ShipToState        string `json:"ship_to_state"`
	ShipToZip          string `json:"ship_to_zip"`
	ShipToCountry      string `json:"ship_to_country"`
	Tax                string `json:"tax"`
	Duty               string `json:"duty"`
	Freight            string `json:"freight"`
	TaxExempt          string `json:"tax_exempt"`
	PONumber           string `json:"po_num"`
	MD5Hash            string `json:"md5_hash"`
	CardCodeResponse   string `json:"card_code_response"`
	CAVVResponse       string `json:"cavv_response"`
	AccountNumber      string `json:"account_number"`
	CardType           string `json:"card_type"`
	SplitTenderID      string `json:"split_tender_id"`
	RequestedAmount    string `json:"requested_amount"`
	BalanceOnCard      string `json:"balance_on_card"`

	// Fields holds every raw field in order, including reserved and
	// merchant-defined ones.
	Fields []string `json:"fields"`
}

// NewTransactionResponse maps split direct-response fields onto the AIM
// layout. Fields beyond the end of the slice stay empty.
func NewTransactionResponse(fields []string) *TransactionResponse {
	r := &TransactionResponse{Fields: fields}

	// Positions 1-40 are contiguous, 41-50 are reserved.
	head := []*string{
		&r.ResponseCode, &r.ResponseSubcode, &r.ResponseReasonCode, &r.ResponseReasonText,
		&r.AuthCode, &r.AVSCode, &r.TransactionID, &r.InvoiceNumber, &r.Description,
		&r.Amount, &r.Method, &r.TransactionType, &r.CustomerID,
		&r.FirstName, &r.LastName, &r.Company, &r.Address, &r.City, &r.State, &r.Zip,
		&r.Country, &r.Phone, &r.Fax, &r.Email,
		&r.ShipToFirstName, &r.ShipToLastName, &r.ShipToCompany, &r.ShipToAddress,
		&r.ShipToCity, &r.ShipToState, &r.ShipToZip, &r.ShipToCountry,
		&r.Tax, &r.Duty, &r.Freight, &r.TaxExempt, &r.PONumber, &r.MD5Hash,
		&r.CardCodeResponse, &r.CAVVResponse,
	}
	for i, dst := range head {
		if i < len(fields) {
			*dst = fields[i]
		}
	}

	tail := []*string{&r.AccountNumber, &r.CardType, &r.SplitTenderID, &r.RequestedAmount, &r.BalanceOnCard}
	for i, dst := range tail {
		if pos := 50 + i; pos < len(fields) {
			*dst = fields[pos]
		}
	}

	return r
}

func (r *TransactionResponse) IsApproved() bool { return r.ResponseCode == ResponseApproved }
func (r *TransactionResponse) IsDeclined() bool { return r.ResponseCode == ResponseDeclined }
func (r *TransactionResponse) IsHeld() bool     { return r.ResponseCode == ResponseHeld }
