package catalog

// StatusValue is one code of a status column.
type StatusValue struct {
	Code  int
	Label string
}

// StatusMap documents the codes stored in a status column.
type StatusMap struct {
	Column string
	Label  string
	Values []StatusValue
}

// HMOPartner is a known insurer with its database id.
type HMOPartner struct {
	ID   int
	Name string
}

// StatusMaps returns the confirmed status code meanings.
func StatusMaps() []StatusMap {
	return []StatusMap{
		{Column: "hmo_status", Label: "HMO Status", Values: []StatusValue{
			{Code: -1, Label: "Rejected"}, {Code: 0, Label: "Pending"}, {Code: 1, Label: "Approved"},
		}},
		{Column: "provider_status", Label: "Provider Status", Values: []StatusValue{
			{Code: -1, Label: "Draft"}, {Code: 0, Label: "Pending"}, {Code: 1, Label: "Submitted"},
		}},
	}
}

// HMOPartners returns the insurers offered in filter pickers.
func HMOPartners() []HMOPartner {
	return []HMOPartner{
		{ID: 73, Name: "UAP Old Mutual (Uganda)"},
		{ID: 4, Name: "UAP (Legacy ID)"},
		{ID: 38, Name: "HMO Partner 38"},
		{ID: 74, Name: "Jubilee Health (Kenya)"},
		{ID: 75, Name: "Jubilee Health (Tanzania)"},
		{ID: 76, Name: "AXA Mansard"},
		{ID: 77, Name: "Cornerstone Insurance"},
		{ID: 78, Name: "Universal Insurance"},
	}
}
