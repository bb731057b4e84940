// Package services holds the course rules that do not depend on storage or
// transport: money and dashboard aggregation, content redaction for viewers and
// the ownership gate that guards course mutations.
package services

import (
	"time"

	"github.com/shopspring/decimal"

	"lms/backend/models"
)

var hundred = decimal.NewFromInt(100)

type StudentRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// EnrollmentRecord is a purchase with its course title and buyer resolved.
type EnrollmentRecord struct {
	Amount      decimal.Decimal
	CourseTitle string
	Student     StudentRef
	PurchasedAt time.Time
}

type EnrollmentEntry struct {
	CourseTitle  string     `json:"courseTitle"`
	Student      StudentRef `json:"student"`
	PurchaseDate time.Time  `json:"purchaseDate"`
}

type DashboardSummary struct {
	TotalCourses         int
	TotalEarnings        decimal.Decimal
	EnrolledStudentsData []EnrollmentEntry
	UniqueStudentsCount  int
}

type Performance struct {
	AvgEnrollmentsPerCourse decimal.Decimal
	AvgEarningPerEnrollment decimal.Decimal
}

// ComputeDashboard summarizes the given courses and purchases. Callers decide which
// purchases count; nothing is filtered here.
func ComputeDashboard(courses []models.Course, purchases []EnrollmentRecord) DashboardSummary {
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Amount)
	}
	entries := EnrolledStudents(purchases)
	return DashboardSummary{
		TotalCourses:         len(courses),
		TotalEarnings:        total,
		EnrolledStudentsData: entries,
		UniqueStudentsCount:  UniqueStudentsCount(entries),
	}
}

// EnrolledStudents yields one entry per purchase, in input order.
func EnrolledStudents(purchases []EnrollmentRecord) []EnrollmentEntry {
	entries := make([]EnrollmentEntry, 0, len(purchases))
	for _, p := range purchases {
		entries = append(entries, EnrollmentEntry{
			CourseTitle:  p.CourseTitle,
			Student:      p.Student,
			PurchaseDate: p.PurchasedAt,
		})
	}
	return entries
}

func UniqueStudentsCount(entries []EnrollmentEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Student.ID] = struct{}{}
	}
	return len(seen)
}

// PriceAfterDiscount is price*(1-discount/100), unrounded.
func PriceAfterDiscount(c models.Course) decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(1).Sub(c.Discount.Div(hundred)))
}

// ComputeEarnings is the course's theoretical revenue from its current enrollment at
// its current price. It is not the sum of purchase amounts.
func ComputeEarnings(c models.Course) decimal.Decimal {
	return PriceAfterDiscount(c).Mul(decimal.NewFromInt(int64(len(c.EnrolledStudents))))
}

// PurchaseAmount is the amount charged for a new purchase, rounded to cents.
func PurchaseAmount(c models.Course) decimal.Decimal {
	return c.Price.Sub(c.Discount.Mul(c.Price).Div(hundred)).Round(2)
}

func ComputeAverageRating(c models.Course) float64 {
	if len(c.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(c.Ratings))
}

func CoursePerformance(s DashboardSummary) Performance {
	perf := Performance{AvgEnrollmentsPerCourse: decimal.Zero, AvgEarningPerEnrollment: decimal.Zero}
	enrollments := decimal.NewFromInt(int64(len(s.EnrolledStudentsData)))
	if s.TotalCourses > 0 {
		perf.AvgEnrollmentsPerCourse = enrollments.Div(decimal.NewFromInt(int64(s.TotalCourses)))
	}
	if len(s.EnrolledStudentsData) > 0 {
		perf.AvgEarningPerEnrollment = s.TotalEarnings.Div(enrollments)
	}
	return perf
}

// EnrollmentRecordsFrom resolves purchases into enrollment records. Purchases whose
// course or buyer was not loaded keep the bare ids.
func EnrollmentRecordsFrom(purchases []models.Purchase) []EnrollmentRecord {
	records := make([]EnrollmentRecord, 0, len(purchases))
	for _, p := range purchases {
		rec := EnrollmentRecord{
			Amount:      p.Amount,
			Student:     StudentRef{ID: p.UserID},
			PurchasedAt: p.CreatedAt,
		}
		if p.Course != nil {
			rec.CourseTitle = p.Course.Title
		}
		if p.User != nil {
			rec.Student.Name = p.User.Name
			rec.Student.ImageURL = p.User.ImageURL
		}
		records = append(records, rec)
	}
	return records
}
