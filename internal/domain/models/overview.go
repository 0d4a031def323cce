package models

// DashboardOverview summarises the properties shown on the overview panel
type DashboardOverview struct {
	TotalCount int        `json:"totalCount"`
	ArmedCount int        `json:"armedCount"`
	Properties []Property `json:"properties"`
}
