package models

type Department struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description    *string         `gorm:"size:255" json:"description"`
	SubDepartments []SubDepartment `gorm:"foreignKey:DepartmentID" json:"sub_departments,omitempty"`
}

// SubDepartment is unique per (name, department); see store.CreateSubDepartment.
type SubDepartment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"not null;size:100;index;uniqueIndex:idx_sub_departments_name_department" json:"name"`
	DepartmentID uint        `gorm:"not null;index;uniqueIndex:idx_sub_departments_name_department" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
