package database

import (
	"planttime/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SeedResult struct {
	Skipped         bool
	Departments     int
	SubDepartments  int
	ProductionLines int
	Workers         int
	Projects        int
}

func strPtr(s string) *string {
	return &s
}

// Seed loads the sample plant layout. It does nothing when any department
// already exists.
func Seed(db *gorm.DB, log *logrus.Logger) (*SeedResult, error) {
	var count int64
	if err := db.Model(&models.Department{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		log.Info("Database already contains data, skipping seed")
		return &SeedResult{Skipped: true}, nil
	}

	wall := models.Department{
		Name:        "Wall",
		Description: strPtr("Wall manufacturing department"),
	}
	subDepartments := []string{
		"Cutting",
		"Framing",
		"Sheeting/Typar",
		"Window/Door Installation",
		"Loading",
	}
	lines := []models.ProductionLine{
		{Name: "Line 1", Description: strPtr("Primary production line")},
		{Name: "Line 2", Description: strPtr("Secondary production line")},
		{Name: "Line 3", Description: strPtr("Tertiary production line")},
	}
	workers := []models.Worker{
		{Name: "John Smith", EmployeeID: "EMP001"},
		{Name: "Sarah Johnson", EmployeeID: "EMP002"},
		{Name: "Mike Wilson", EmployeeID: "EMP003"},
		{Name: "Emily Davis", EmployeeID: "EMP004"},
		{Name: "David Brown", EmployeeID: "EMP005"},
	}
	projects := []models.Project{
		{Name: "Residential Complex A", Description: strPtr("200-unit residential project")},
		{Name: "Commercial Building B", Description: strPtr("Office building construction")},
		{Name: "School Renovation", Description: strPtr("Elementary school wall renovation")},
		{Name: "Hospital Extension", Description: strPtr("Hospital wing addition")},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&wall).Error; err != nil {
			return err
		}
		subs := make([]models.SubDepartment, 0, len(subDepartments))
		for _, name := range subDepartments {
			subs = append(subs, models.SubDepartment{Name: name, DepartmentID: wall.ID})
		}
		if err := tx.Create(&subs).Error; err != nil {
			return err
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		if err := tx.Create(&workers).Error; err != nil {
			return err
		}
		return tx.Create(&projects).Error
	})
	if err != nil {
		log.WithError(err).Error("Failed to seed database")
		return nil, err
	}

	result := &SeedResult{
		Departments:     1,
		SubDepartments:  len(subDepartments),
		ProductionLines: len(lines),
		Workers:         len(workers),
		Projects:        len(projects),
	}
	log.WithFields(logrus.Fields{
		"departments":      result.Departments,
		"sub_departments":  result.SubDepartments,
		"production_lines": result.ProductionLines,
		"workers":          result.Workers,
		"projects":         result.Projects,
	}).Info("Database seeded")
	return result, nil
}
