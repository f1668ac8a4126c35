package model

// StoredReport is a report loaded from the store together with its original text
type StoredReport struct {
	File     string  `json:"file"`
	Original string  `json:"-"`
	Report   *Report `json:"report"`
}
