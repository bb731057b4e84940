package main

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lms/backend/draft"
	"lms/backend/models"
	"lms/backend/utils"
)

const demoEducatorID = "demo_educator"

// seedDemo creates a demo educator with one course when the catalogue is empty.
func seedDemo(ctx context.Context, db *gorm.DB, logger *utils.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	d := draft.New(
		"Introduction to Go",
		"<p>Types, interfaces and concurrency from the ground up.</p>",
		decimal.NewFromInt(49),
		decimal.NewFromInt(10),
	)
	basics, err := d.AddChapter("Getting started")
	if err != nil {
		return err
	}
	lectures := []draft.LectureInput{
		{Title: "Installing the toolchain", Duration: 8, URL: "https://youtu.be/demo-install", IsPreviewFree: true},
		{Title: "Hello, world", Duration: 12, URL: "https://youtu.be/demo-hello"},
	}
	for _, in := range lectures {
		if _, err := d.AddLecture(basics.ID, in); err != nil {
			return err
		}
	}
	concurrency, err := d.AddChapter("Concurrency")
	if err != nil {
		return err
	}
	if _, err := d.AddLecture(concurrency.ID, draft.LectureInput{
		Title:    "Goroutines and channels",
		Duration: 25,
		URL:      "https://youtu.be/demo-goroutines",
	}); err != nil {
		return err
	}

	payload := d.Build()
	if err := payload.Validate(); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		educator := models.User{ID: demoEducatorID, Name: "Demo Educator", Email: "educator@example.com"}
		if err := tx.Where(models.User{ID: educator.ID}).FirstOrCreate(&educator).Error; err != nil {
			return err
		}
		course := models.Course{EducatorID: educator.ID}
		payload.ApplyTo(&course)
		if err := tx.Omit("Educator").Create(&course).Error; err != nil {
			return err
		}
		logger.Info("demo course seeded", "course_id", course.ID)
		return nil
	})
}
