package models

// Activity is a course offered by the school.
type Activity struct {
	ID          int64   `db:"id" json:"id"`
	Description string  `db:"description" json:"descripcion"`
	Cost        float64 `db:"cost" json:"costo"`
}

// ActivityDetail includes the equipment that can be rented for the activity.
type ActivityDetail struct {
	Activity
	Equipment []Equipment `json:"equipamiento"`
}

// Equipment is rentable gear that belongs to one activity.
type Equipment struct {
	ID          int64   `db:"id" json:"id"`
	ActivityID  int64   `db:"activity_id" json:"id_actividad"`
	Description string  `db:"description" json:"descripcion"`
	Cost        float64 `db:"cost" json:"costo"`
}

// ActivityFilter lists activities.
type ActivityFilter struct {
	Search string
	Page
}
