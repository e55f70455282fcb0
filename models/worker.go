package models

type Worker struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null;index;size:100" json:"name"`
	EmployeeID string `gorm:"uniqueIndex;not null;size:50" json:"employee_id"`
}

func (w *Worker) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.EmployeeID
}
