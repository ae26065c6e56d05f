package model

// Country is a normalized catalog entry. The external provider returns
// heterogeneous records; everything downstream of normalization works
// with this shape only.
type Country struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capital    string   `json:"capital,omitempty"`
	Region     string   `json:"region,omitempty"`
	Subregion  string   `json:"subregion,omitempty"`
	FlagURL    string   `json:"flagUrl,omitempty"`
	Currencies []string `json:"currencies,omitempty"`
	Languages  []string `json:"languages,omitempty"`
}
