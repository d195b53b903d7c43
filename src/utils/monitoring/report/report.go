package report

type Report struct {
	Verifier *VerifierReport `json:"verifier,omitempty"`
	Issuer   *IssuerReport   `json:"issuer,omitempty"`
	Bulk     *BulkReport     `json:"bulk,omitempty"`
}

func New() Report {
	return Report{
		Verifier: &VerifierReport{},
		Issuer:   &IssuerReport{},
		Bulk:     &BulkReport{},
	}
}
