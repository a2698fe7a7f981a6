package extract

// Record is one parsed person row from the income catalogue.
type Record struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code"`
	AreaName       string `json:"area_name"`
	Age            int    `json:"age"`
	IncomeYear     int    `json:"income_year"`
	SalaryRank     int    `json:"salary_rank"`
	PaymentRemarks bool   `json:"payment_remarks"`
	Salary         int64  `json:"salary"`
	Capital        int64  `json:"capital"`
}

// Heading is a postal code heading such as "167 72 Bromma".
type Heading struct {
	PostalCode string
	AreaName   string
}

// IsZero reports whether no heading has been seen yet.
func (h Heading) IsZero() bool {
	return h.PostalCode == ""
}
