package dto

// ReportQuery selects the rendering of a report endpoint.
type ReportQuery struct {
	Format  string `form:"format" validate:"omitempty,oneof=json csv pdf"`
	Refresh bool   `form:"refresh"`
}
