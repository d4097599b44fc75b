package models

// Portfolio is a client with the plans and extra contributions it holds.
type Portfolio struct {
	Client        *Client              `json:"client"`
	Plans         []*Plan              `json:"plans"`
	Contributions []*ExtraContribution `json:"extra_contributions"`
}
