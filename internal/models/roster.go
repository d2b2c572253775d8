package models

// SchoolClass is a roster class entry used by appointment form pickers.
type SchoolClass struct {
	Key         string `db:"class_key" json:"key"`
	DisplayText string `db:"display_text" json:"display_text"`
}

// Student is a roster entry scoped to one class.
type Student struct {
	ID          string `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
}

// Teacher is a directory entry for teacher appointments.
type Teacher struct {
	ID          string `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
}
